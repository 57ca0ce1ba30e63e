package powerauth

import "errors"

// PowerAuth package errors.
var (
	// ErrRestClientRequired is returned by New when no transport.RestClient
	// was configured.
	ErrRestClientRequired = errors.New("powerauth: rest client is required")

	// ErrPersistenceRequired is returned by New when no persistence.Adapter
	// was configured.
	ErrPersistenceRequired = errors.New("powerauth: persistence adapter is required")
)
