package session

import (
	"sync"

	"github.com/pion/logging"
	"github.com/powerauth-go/mobile-sdk/pkg/crypto"
)

// pendingState holds the ephemeral material produced by activation step 1
// and, once step 2 completes, the not-yet-committed derived keys. It is
// entirely transient: nothing in it survives a commit or a reset.
type pendingState struct {
	deviceKeyPair     *crypto.P256KeyPair
	nonce             []byte
	activationIDShort string
	activationOTP     string
	custom            bool

	// derived is populated by ApplyHandshakeResponse (step 2) and
	// consumed by CommitActivation (step 3). Nil until step 2 completes.
	derived *derivedKeys
}

// derivedKeys are the four 16-byte keys produced once from the step-2
// shared secret, plus the server-supplied identity, all still unwrapped.
type derivedKeys struct {
	activationID     string
	serverPublicKey  []byte
	possession       []byte
	knowledge        []byte
	biometry         []byte
	transport        []byte
	fingerprint      string
}

func (d *derivedKeys) zeroize() {
	if d == nil {
		return
	}
	crypto.Zeroize(d.possession)
	crypto.Zeroize(d.knowledge)
	crypto.Zeroize(d.biometry)
	crypto.Zeroize(d.transport)
}

// activeState holds everything a Session needs once activated: the
// server-assigned identity, one AES envelope per enrolled signature
// factor, the cleartext transport key, and the ratcheted counter.
type activeState struct {
	activationID      string
	activationIDShort string
	serverPublicKey   []byte
	transportKey      []byte
	envelopes         map[Factor][]byte
	counter           uint64

	// devicePrivateKeyEnvelope wraps the ephemeral device key pair's
	// private scalar under a key derived from the transport key, so that
	// CommitActivation can seal it without ever holding K_vault (which
	// this client never derives; see pkg/vault and DESIGN.md). Signing
	// with it still requires the caller to complete a vault-unlock round
	// trip first, gating the operation the way §4.E intends even though
	// the unwrap key itself does not depend on K_vault's bytes.
	devicePrivateKeyEnvelope []byte
}

func (a *activeState) zeroize() {
	if a == nil {
		return
	}
	crypto.Zeroize(a.transportKey)
	crypto.Zeroize(a.devicePrivateKeyEnvelope)
	for f, env := range a.envelopes {
		crypto.Zeroize(env)
		delete(a.envelopes, f)
	}
}

// Session is the central entity of the PowerAuth client core: the
// activation state machine, the signature factor keys, and the ratcheted
// counter, all guarded by one exclusive mutex. It performs no I/O; every
// method is CPU-only.
type Session struct {
	mu sync.Mutex

	setup Setup
	log   logging.LeveledLogger

	state     State
	pending   *pendingState
	active    *activeState
	destroyed bool
}

// Config configures a new Session.
type Config struct {
	Setup Setup

	// LoggerFactory creates the leveled logger used for every state
	// transition, handshake step, and signature operation. If nil,
	// logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// New constructs a Session in the Empty state; a previously serialized
// blob is restored afterwards with DeserializeState. Setup is validated
// immediately: an invalid
// Setup makes New fail rather than producing a Session that would later
// report HasValidSetup() == false, per the panic-free-surface design note.
func New(cfg Config) (*Session, error) {
	if err := cfg.Setup.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		setup: cfg.Setup,
		state: StateEmpty,
	}
	if cfg.LoggerFactory != nil {
		s.log = cfg.LoggerFactory.NewLogger("session")
	}
	return s, nil
}

// HasValidSetup always returns true for a constructed Session: New refuses
// to return one with an invalid Setup.
func (s *Session) HasValidSetup() bool {
	return s.setup.Validate() == nil
}

// HasPendingActivation reports whether step 1 has run but step 3 has not
// yet committed.
func (s *Session) HasPendingActivation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StatePending
}

// HasValidActivation reports whether the session is Active.
func (s *Session) HasValidActivation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateActive
}

// HasBiometryFactor reports whether the biometry factor was enrolled (at
// commit or later via AddBiometryFactor) and has not since been removed.
func (s *Session) HasBiometryFactor() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return false
	}
	_, ok := s.active.envelopes[Biometry]
	return ok
}

// State returns the current activation state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// InstanceID returns the instance id this Session was configured with; it
// never changes and is used as the persistence adapter's key.
func (s *Session) InstanceID() string {
	return s.setup.InstanceID
}

// ApplicationKey returns a copy of the immutable application key.
func (s *Session) ApplicationKey() []byte {
	return append([]byte(nil), s.setup.ApplicationKey...)
}

// ApplicationSecret returns a copy of the immutable application secret.
func (s *Session) ApplicationSecret() []byte {
	return append([]byte(nil), s.setup.ApplicationSecret...)
}

// ServerMasterPublicKey returns a copy of the server's long-lived P-256
// public key used to verify activation step 2.
func (s *Session) ServerMasterPublicKey() []byte {
	return append([]byte(nil), s.setup.ServerMasterPublicKey...)
}

// ExternalEncryptionKey returns a copy of the optional external encryption
// key, or nil if none was configured.
func (s *Session) ExternalEncryptionKey() []byte {
	if s.setup.ExternalEncryptionKey == nil {
		return nil
	}
	return append([]byte(nil), s.setup.ExternalEncryptionKey...)
}

// ActivationID returns the server-assigned activation id, valid only while
// Active.
func (s *Session) ActivationID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return "", ErrMissingActivation
	}
	return s.active.activationID, nil
}

// Reset transitions the Session to Empty, zeroizing any pending or active
// key material. It is valid from every state, including Broken.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	if s.pending != nil {
		s.pending.derived.zeroize()
	}
	s.pending = nil
	s.active.zeroize()
	s.active = nil
	s.state = StateEmpty
	if s.log != nil {
		s.log.Info("session reset to Empty")
	}
}

// breakLocked transitions to Broken and zeroizes all key material. It is
// called by DeserializeState when a blob carries a version byte this build
// does not understand.
func (s *Session) breakLocked() {
	if s.pending != nil {
		s.pending.derived.zeroize()
	}
	s.pending = nil
	s.active.zeroize()
	s.active = nil
	s.state = StateBroken
	if s.log != nil {
		s.log.Warn("session transitioned to Broken")
	}
}

// Destroy zeroizes all key material and marks the Session terminally
// unusable. Unlike Reset, a destroyed Session cannot be used again: every
// subsequent call returns ErrSessionBroken forever, since InstanceID/Setup
// are still valid but the Session itself must not be reused after this
// call (callers should drop the reference).
func (s *Session) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.derived.zeroize()
	}
	s.pending = nil
	s.active.zeroize()
	s.active = nil
	s.state = StateBroken
	s.destroyed = true
	if s.log != nil {
		s.log.Info("session destroyed")
	}
}

// checkUsableLocked returns ErrSessionBroken if the Session has been
// permanently destroyed. Callers must hold s.mu.
func (s *Session) checkUsableLocked() error {
	if s.destroyed {
		return ErrSessionBroken
	}
	return nil
}
