package session

import "errors"

// Session package errors. Each names one kind of the protocol's error
// taxonomy that this package can itself detect; packages built on top of
// Session (activation, signature, vault) wrap these with %w where they add
// their own context.
var (
	// ErrNotConfigured names an invalid application Setup. New rejects an
	// invalid Setup outright through Setup.Validate, whose errors do not
	// wrap this sentinel, so no operation in this package returns it.
	ErrNotConfigured = errors.New("session: application setup is not valid")

	// ErrInvalidActivationState is returned when an operation is attempted
	// against a state that cannot support it (e.g. starting an activation
	// while one is already pending or active).
	ErrInvalidActivationState = errors.New("session: operation not valid in current activation state")

	// ErrMissingActivation is returned when an operation requires an
	// Active session but the Session is not Active; Sign returns it only
	// for an Empty Session.
	ErrMissingActivation = errors.New("session: no activation present")

	// ErrActivationPending is returned by Sign while the Session is
	// Pending, i.e. after step 1 and before the commit of step 3.
	ErrActivationPending = errors.New("session: activation is pending, not yet committed")

	// ErrInvalidActivationData is returned on any cryptographic
	// inconsistency: an ECDSA verification failure, an AES-CBC padding or
	// length failure, an HMAC mismatch, or a corrupt serialized blob.
	ErrInvalidActivationData = errors.New("session: invalid or corrupt activation data")

	// ErrUnsupportedVersion is returned by DeserializeState when the
	// leading version byte of a blob is not one this build understands.
	ErrUnsupportedVersion = errors.New("session: unsupported serialized state version")

	// ErrSignatureFactorNotEnrolled is returned when a factor is
	// requested for signing or unlocking but was never enrolled at
	// commit time (or was later removed).
	ErrSignatureFactorNotEnrolled = errors.New("session: requested signature factor is not enrolled")

	// ErrSessionBroken is returned by any operation on a Session that has
	// transitioned to Broken; only Reset recovers from this state, and
	// nothing recovers a Session after Destroy.
	ErrSessionBroken = errors.New("session: session is broken, call Reset before continuing")

	// ErrInvalidFactorCombination is returned when a factor mask names no
	// factors, or names Knowledge and/or Biometry without Possession.
	ErrInvalidFactorCombination = errors.New("session: invalid factor combination")
)
