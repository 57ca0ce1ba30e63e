package session

import (
	"crypto/rand"

	"github.com/powerauth-go/mobile-sdk/pkg/crypto"
)

// BeginActivation generates the ephemeral device key pair and nonce for
// activation step 1 and transitions the Session Empty -> Pending. idShort
// and otp are the activation code's two halves (or, for the custom flow,
// the canonicalized identity-attribute token and caller-supplied secret).
func (s *Session) BeginActivation(activationIDShort, activationOTP string, custom bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUsableLocked(); err != nil {
		return err
	}
	if s.state != StateEmpty {
		return ErrInvalidActivationState
	}

	keyPair, err := crypto.P256GenerateKeyPair()
	if err != nil {
		return err
	}
	nonce := make([]byte, crypto.AESCBCBlockSize)
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	s.pending = &pendingState{
		deviceKeyPair:     keyPair,
		nonce:             nonce,
		activationIDShort: activationIDShort,
		activationOTP:     activationOTP,
		custom:            custom,
	}
	s.state = StatePending
	if s.log != nil {
		s.log.Info("activation step 1: Empty -> Pending")
	}
	return nil
}

// PendingHandshakeMaterial exposes the ephemeral material BeginActivation
// generated so the activation client can build the step-1 request. It
// fails unless the Session is Pending with step 2 not yet applied.
func (s *Session) PendingHandshakeMaterial() (keyPair *crypto.P256KeyPair, nonce []byte, activationIDShort, activationOTP string, custom bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePending || s.pending == nil {
		return nil, nil, "", "", false, ErrInvalidActivationState
	}
	p := s.pending
	return p.deviceKeyPair, p.nonce, p.activationIDShort, p.activationOTP, p.custom, nil
}

// HandshakeResult is what activation step 2 derives once the server's
// response has been verified and decrypted; the key material is still
// unwrapped (no unlock keys are applied yet).
type HandshakeResult struct {
	ActivationID    string
	ServerPublicKey []byte
	Possession      []byte
	Knowledge       []byte
	Biometry        []byte
	Transport       []byte
	Fingerprint     string
}

// ApplyHandshakeResponse stores the result of activation step 2. The
// Session remains Pending; the keys are held unwrapped in memory until
// CommitActivation wraps and stores them. Per §7, any error during step 2
// (the caller detects one before calling this, e.g. a bad ECDSA
// signature) is reported by the caller resetting the Session via
// AbortPendingActivation rather than by this method.
func (s *Session) ApplyHandshakeResponse(result HandshakeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePending || s.pending == nil {
		return ErrInvalidActivationState
	}
	if len(result.Possession) != crypto.AESCBCKeySize ||
		len(result.Knowledge) != crypto.AESCBCKeySize ||
		len(result.Biometry) != crypto.AESCBCKeySize ||
		len(result.Transport) != crypto.AESCBCKeySize {
		return ErrInvalidActivationData
	}

	s.pending.derived = &derivedKeys{
		activationID:    result.ActivationID,
		serverPublicKey: result.ServerPublicKey,
		possession:      result.Possession,
		knowledge:       result.Knowledge,
		biometry:        result.Biometry,
		transport:       result.Transport,
		fingerprint:     result.Fingerprint,
	}
	if s.log != nil {
		s.log.Info("activation step 2 applied, awaiting commit")
	}
	return nil
}

// AbortPendingActivation returns the Session to Empty from Pending,
// zeroizing any ephemeral or derived key material. Callers use this when
// step 1 or step 2 fails (e.g. the server's ECDSA signature does not
// verify), per §7's "session returns to Empty" on step-2 verification
// failure.
func (s *Session) AbortPendingActivation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePending {
		return
	}
	s.resetLocked()
}

// CommitActivation wraps each derived signature factor key present in
// unlock with that unlock key and transitions Pending -> Active with
// counter = 0. Only factors with a non-empty corresponding unlock key field
// are enrolled; Possession must always be present. A factor not enrolled
// here can only be added later through a vault-unlock operation (see
// pkg/vault).
func (s *Session) CommitActivation(unlock UnlockKeys) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePending || s.pending == nil || s.pending.derived == nil {
		return ErrInvalidActivationState
	}
	if len(unlock.Possession) == 0 {
		return ErrInvalidActivationData
	}

	d := s.pending.derived
	envelopes := make(map[Factor][]byte, 3)

	possessionUnlock := crypto.SignatureUnlockKeyFromData(unlock.Possession)
	envelope, err := crypto.AESCBCEncrypt(possessionUnlock, crypto.ZeroIV, d.possession)
	if err != nil {
		return err
	}
	envelopes[Possession] = envelope

	if len(unlock.Password) > 0 {
		knowledgeUnlock := crypto.DeriveKnowledgeUnlockKey(unlock.Password, []byte(s.pending.activationIDShort))
		envelope, err := crypto.AESCBCEncrypt(knowledgeUnlock, crypto.ZeroIV, d.knowledge)
		if err != nil {
			return err
		}
		envelopes[Knowledge] = envelope
	}

	if len(unlock.Biometry) > 0 {
		envelope, err := crypto.AESCBCEncrypt(unlock.Biometry, crypto.ZeroIV, d.biometry)
		if err != nil {
			return err
		}
		envelopes[Biometry] = envelope
	}

	deviceKeyUnlock, err := crypto.DeriveK(d.transport, devicePrivateKeyProtectionIndex)
	if err != nil {
		return err
	}
	devicePrivateKeyEnvelope, err := crypto.AESCBCEncrypt(deviceKeyUnlock, crypto.ZeroIV, s.pending.deviceKeyPair.PrivateKeyBytes())
	crypto.Zeroize(deviceKeyUnlock)
	if err != nil {
		return err
	}

	s.active = &activeState{
		activationID:             d.activationID,
		activationIDShort:        s.pending.activationIDShort,
		serverPublicKey:          d.serverPublicKey,
		transportKey:             append([]byte(nil), d.transport...),
		envelopes:                envelopes,
		counter:                  0,
		devicePrivateKeyEnvelope: devicePrivateKeyEnvelope,
	}
	d.zeroize()
	s.pending = nil
	s.state = StateActive
	if s.log != nil {
		s.log.Info("activation committed: Pending -> Active")
	}
	return nil
}

// PendingFingerprint returns the human-verifiable device fingerprint
// computed during step 2, available once a handshake response has been
// applied and until commit. Useful for UI display right before commit.
func (s *Session) PendingFingerprint() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || s.pending.derived == nil {
		return "", ErrInvalidActivationState
	}
	return s.pending.derived.fingerprint, nil
}
