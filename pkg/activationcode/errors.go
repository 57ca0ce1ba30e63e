package activationcode

import "errors"

// Activation code package errors.
var (
	// ErrInvalidActivationCode is returned when a code does not match the
	// "XXXXX-XXXXX-XXXXX-XXXXX" grammar or fails its checksum.
	ErrInvalidActivationCode = errors.New("activationcode: invalid activation code")

	// ErrInvalidSignature is returned when a detached signature segment
	// attached after a "#" is not valid base64.
	ErrInvalidSignature = errors.New("activationcode: invalid detached signature encoding")
)
