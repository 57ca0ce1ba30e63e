package session

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/powerauth-go/mobile-sdk/pkg/crypto"
)

// SignRequest carries everything the signature engine needs to produce one
// signed request: the already-assembled HTTP method/uriID/body triple, the
// caller's factor selection, and the unlock keys needed to open whichever
// factors were selected.
type SignRequest struct {
	Method string
	URIID  string
	Body   []byte

	Factors    Factor // Possession required; Knowledge/Biometry optional; PrepareVaultUnlock may be OR-ed in.
	UnlockKeys UnlockKeys
}

// SignResult is the product of one signature operation: the fields needed
// to build the X-PowerAuth-Authorization header, plus the new counter
// value that was ratcheted as part of producing it.
type SignResult struct {
	ActivationID   string
	ApplicationKey []byte
	Nonce          []byte
	SignatureType  string
	Signature      string
	Counter        uint64 // the counter value consumed by this signature (pre-ratchet value + 1 is stored)
}

// Sign unlocks the requested factor keys, computes the signature base
// string, produces one MAC per factor, and ratchets the counter — all
// under the Session's lock, so that two concurrent callers never observe
// the same counter value. The counter is incremented exactly once per
// call that reaches the ratchet step, even though the caller has not yet
// performed (and may never successfully complete) the HTTP round trip:
// per §5, ratcheting happens before transport, and losing the increment
// on a later transport failure would desynchronize the server-side
// counter permanently.
func (s *Session) Sign(req SignRequest) (*SignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUsableLocked(); err != nil {
		return nil, err
	}
	switch s.state {
	case StateEmpty:
		return nil, ErrMissingActivation
	case StatePending:
		return nil, ErrActivationPending
	case StateBroken:
		return nil, ErrSessionBroken
	case StateActive:
		// fall through
	default:
		return nil, ErrInvalidActivationState
	}

	combination, err := NewFactorCombination(req.Factors)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, crypto.AESCBCBlockSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("session: sign: %w", err)
	}

	base := buildSignatureBase(s.setup.ApplicationKey, req.Method, []byte(req.URIID), req.Body, nonce)

	counterBytes := counterToBigEndian16(s.active.counter)

	var parts []string
	for _, f := range OrderedFactors(req.Factors.Factors()) {
		key, err := s.unlockFactorLocked(f, req.UnlockKeys)
		if err != nil {
			return nil, err
		}
		salt := factorSalt(f, req.Factors.HasVaultUnlock())
		mac := crypto.HMACSHA256Truncated16(key, concat(base, counterBytes, salt))
		crypto.Zeroize(key)
		parts = append(parts, macToDigits(mac))
	}

	result := &SignResult{
		ActivationID:   s.active.activationID,
		ApplicationKey: append([]byte(nil), s.setup.ApplicationKey...),
		Nonce:          nonce,
		SignatureType:  combination.String(),
		Signature:      strings.Join(parts, "-"),
		Counter:        s.active.counter + 1,
	}

	s.active.counter++
	if s.log != nil {
		s.log.Debugf("signed request with counter=%d factors=%s", result.Counter, combination)
	}
	return result, nil
}

// unlockFactorLocked decrypts the envelope for factor f using the
// corresponding field of unlock. Caller must hold s.mu.
func (s *Session) unlockFactorLocked(f Factor, unlock UnlockKeys) ([]byte, error) {
	envelope, ok := s.active.envelopes[f]
	if !ok {
		return nil, ErrSignatureFactorNotEnrolled
	}

	var unlockKey []byte
	switch f {
	case Possession:
		if len(unlock.Possession) == 0 {
			return nil, ErrSignatureFactorNotEnrolled
		}
		unlockKey = crypto.SignatureUnlockKeyFromData(unlock.Possession)
	case Knowledge:
		if len(unlock.Password) == 0 {
			return nil, ErrSignatureFactorNotEnrolled
		}
		unlockKey = crypto.DeriveKnowledgeUnlockKey(unlock.Password, []byte(s.activationIDShortLocked()))
	case Biometry:
		if len(unlock.Biometry) == 0 {
			return nil, ErrSignatureFactorNotEnrolled
		}
		unlockKey = unlock.Biometry
	default:
		return nil, ErrSignatureFactorNotEnrolled
	}

	key, err := crypto.AESCBCDecrypt(unlockKey, crypto.ZeroIV, envelope)
	if err != nil {
		return nil, fmt.Errorf("session: %w", ErrInvalidActivationData)
	}
	return key, nil
}

// activationIDShortLocked returns the activation-id-short retained from
// commit time, which is the PBKDF2 salt for knowledge-factor unlock and so
// stays stable across the session's lifetime. Caller must hold s.mu.
func (s *Session) activationIDShortLocked() string {
	return s.active.activationIDShort
}

// buildSignatureBase assembles "appKey & method & base64(uriID) &
// base64(body) & base64(nonce)".
func buildSignatureBase(appKey []byte, method string, uriID, body, nonce []byte) []byte {
	return []byte(strings.Join([]string{
		string(appKey),
		method,
		b64(uriID),
		b64(body),
		b64(nonce),
	}, "&"))
}

// counterToBigEndian16 encodes a counter as a 16-byte big-endian value,
// matching DeriveK's index encoding (the MAC salt needs a fixed-width
// representation too).
func counterToBigEndian16(counter uint64) []byte {
	out := make([]byte, 16)
	for i := 0; i < 8; i++ {
		out[15-i] = byte(counter >> (8 * i))
	}
	return out
}

// factorSalt returns the per-factor MAC salt byte, OR-ed with
// PrepareVaultUnlock when the caller requested a vault-unlock signature —
// this is what lets the server distinguish a vault-unlock signature from a
// regular one without changing the returned header format.
func factorSalt(f Factor, vaultUnlock bool) []byte {
	salt := byte(f)
	if vaultUnlock {
		salt |= byte(PrepareVaultUnlock)
	}
	return []byte{salt}
}

// macToDigits folds a 16-byte MAC into an 8-digit decimal string (value mod
// 10^8, zero-padded).
func macToDigits(mac []byte) string {
	var v uint64
	for _, b := range mac {
		v = (v << 8) | uint64(b)
		v %= 100000000
	}
	return fmt.Sprintf("%08d", v)
}

func concat(parts ...[]byte) []byte {
	var total int
	for _, p := range parts {
		total += len(p)
	}
	out := make([]byte, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
