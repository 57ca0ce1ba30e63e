package transport

// Wire-shape request/response bodies for the four REST endpoints the core
// consumes. Field names match the JSON the server expects exactly.

// CreateActivationRequest is the body of POST /pa/activation/create.
type CreateActivationRequest struct {
	ActivationIDShort        string `json:"activationIdShort"`
	ActivationName           string `json:"activationName"`
	ActivationNonce          string `json:"activationNonce"`
	ApplicationKey           string `json:"applicationKey"`
	ApplicationSignature     string `json:"applicationSignature"`
	EncryptedDevicePublicKey string `json:"encryptedDevicePublicKey"`
	EphemeralPublicKey       string `json:"ephemeralPublicKey"`
	Extras                   string `json:"extras,omitempty"`
}

// CreateActivationResponse is the body returned by POST
// /pa/activation/create.
type CreateActivationResponse struct {
	ActivationID                       string `json:"activationId"`
	ActivationNonce                    string `json:"activationNonce"`
	EphemeralPublicKey                 string `json:"ephemeralPublicKey"`
	EncryptedServerPublicKey           string `json:"encryptedServerPublicKey"`
	EncryptedServerPublicKeySignature  string `json:"encryptedServerPublicKeySignature"`
}

// ActivationStatusRequest is the body of POST /pa/activation/status.
type ActivationStatusRequest struct {
	ActivationID string `json:"activationId"`
}

// ActivationStatusResponse is the body returned by POST
// /pa/activation/status. EncryptedStatusBlob is 24 bytes of AES-CBC
// ciphertext; this core carries it as an opaque base64 string and does not
// decode it.
type ActivationStatusResponse struct {
	EncryptedStatusBlob string `json:"encryptedStatusBlob"`
}

// VaultUnlockResponse is the body returned by POST /pa/vault/unlock. The
// request itself has an empty body beyond the signed headers.
type VaultUnlockResponse struct {
	EncryptedVaultEncryptionKey string `json:"encryptedVaultEncryptionKey"`
}

// RemoveActivationResponse is the body returned by POST
// /pa/activation/remove.
type RemoveActivationResponse struct {
	Status string `json:"status"`
}
