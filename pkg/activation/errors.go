package activation

import "errors"

// Activation package errors.
var (
	// ErrServerSignatureInvalid is returned when the server's ECDSA
	// signature over its ephemeral public key does not verify against
	// the configured server master public key.
	ErrServerSignatureInvalid = errors.New("activation: server signature verification failed")

	// ErrFingerprintMismatch names a device fingerprint that does not
	// match an expected one. No function in this package takes an
	// expected fingerprint, so none returns it.
	ErrFingerprintMismatch = errors.New("activation: device fingerprint mismatch")

	// ErrCustomActivationMissingSecret is returned when the custom
	// activation flow is invoked without a caller-supplied OTP secret.
	ErrCustomActivationMissingSecret = errors.New("activation: custom activation requires a caller-supplied OTP")

	// ErrEncryptionFailed is returned when the non-personalized
	// encryption envelope used by the custom activation flow cannot be
	// built.
	ErrEncryptionFailed = errors.New("activation: failed to build non-personalized encryption envelope")
)
