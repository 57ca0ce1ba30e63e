package transport

import "context"

// RestClient is the external transport collaborator: it issues the four
// REST endpoints over HTTP, handling TLS, retries and JSON on its own. The
// core never implements this interface; it only calls it.
//
// authorizationHeader, where present, is the fully formatted
// "X-PowerAuth-Authorization" header value (see pkg/signature) to attach
// to the request. Endpoints that are unsigned (activation create and
// activation status) never receive one.
type RestClient interface {
	// CreateActivation issues POST /pa/activation/create.
	CreateActivation(ctx context.Context, req CreateActivationRequest) (*CreateActivationResponse, error)

	// ActivationStatus issues POST /pa/activation/status.
	ActivationStatus(ctx context.Context, req ActivationStatusRequest) (*ActivationStatusResponse, error)

	// VaultUnlock issues POST /pa/vault/unlock with the given signed
	// authorization header and an empty body.
	VaultUnlock(ctx context.Context, authorizationHeader string) (*VaultUnlockResponse, error)

	// RemoveActivation issues POST /pa/activation/remove with the given
	// signed authorization header and an empty body.
	RemoveActivation(ctx context.Context, authorizationHeader string) (*RemoveActivationResponse, error)
}
