// Package vault implements the privileged operations gated behind a
// server vault-unlock round trip: fetching the encrypted vault key,
// deriving caller-requested keys from it, validated password changes,
// biometry enrollment, and signing arbitrary payloads with the device's
// own asymmetric private key.
//
// Every operation here except DeriveCryptographicKey first signs and sends
// a PrepareVaultUnlock-flagged request through pkg/signature and
// pkg/transport before touching any local key material, so a wrong
// password or a revoked biometry key is caught by the server rather than
// silently corrupting local state. DeriveCryptographicKey issues no
// request: it derives from a vault key the caller already obtained with
// FetchVaultEncryptionKey, and no single call here fetches and derives.
package vault
