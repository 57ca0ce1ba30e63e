package vault

import "errors"

// Vault package errors.
var (
	// ErrVaultUnlockFailed is returned when the server's vault-unlock
	// response cannot be decrypted under the session's transport key.
	ErrVaultUnlockFailed = errors.New("vault: failed to decrypt vault encryption key")
)
