package vault

import (
	"context"
	"encoding/base64"

	"github.com/pion/logging"
	"github.com/powerauth-go/mobile-sdk/pkg/crypto"
	"github.com/powerauth-go/mobile-sdk/pkg/session"
	"github.com/powerauth-go/mobile-sdk/pkg/signature"
	"github.com/powerauth-go/mobile-sdk/pkg/transport"
)

// Client drives the vault-unlock round trip and everything built on top of
// it: deriving caller-chosen keys, validated password changes, biometry
// enrollment, and device-private-key signing.
type Client struct {
	session *session.Session
	engine  *signature.Engine
	rest    transport.RestClient
	log     logging.LeveledLogger
}

// Config configures a vault Client.
type Config struct {
	Session *session.Session
	Engine  *signature.Engine
	Rest    transport.RestClient

	// LoggerFactory creates the leveled logger used for vault operations.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// NewClient constructs a vault Client.
func NewClient(cfg Config) *Client {
	c := &Client{session: cfg.Session, engine: cfg.Engine, rest: cfg.Rest}
	if cfg.LoggerFactory != nil {
		c.log = cfg.LoggerFactory.NewLogger("vault")
	}
	return c
}

// FetchVaultEncryptionKey signs an empty POST /pa/vault/unlock request
// with the given unlock keys (PrepareVaultUnlock is always OR-ed in
// automatically) and decrypts the returned vault encryption key under the
// session's transport key. The round trip itself is the proof that the
// supplied unlock keys are correct: a wrong password or a revoked
// biometry key makes the server refuse the signature before any key
// material here is touched.
func (c *Client) FetchVaultEncryptionKey(ctx context.Context, unlock session.UnlockKeys) ([]byte, error) {
	auth := signature.Authentication{
		UsePossession:      len(unlock.Possession) > 0,
		UseKnowledge:       len(unlock.Password) > 0,
		UseBiometry:        len(unlock.Biometry) > 0,
		PrepareVaultUnlock: true,
		UnlockKeys:         unlock,
	}

	header, err := c.engine.Sign(signature.Request{
		Method: "POST",
		URIID:  "/pa/vault/unlock",
		Body:   nil,
		Auth:   auth,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.rest.VaultUnlock(ctx, header)
	if err != nil {
		return nil, err
	}

	encryptedVaultKey, err := base64.StdEncoding.DecodeString(resp.EncryptedVaultEncryptionKey)
	if err != nil {
		return nil, ErrVaultUnlockFailed
	}

	transportKey, err := c.session.TransportKey()
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(transportKey)

	vaultKey, err := crypto.AESCBCDecrypt(transportKey, crypto.ZeroIV, encryptedVaultKey)
	if err != nil {
		return nil, ErrVaultUnlockFailed
	}

	if c.log != nil {
		c.log.Info("vault encryption key fetched")
	}
	return vaultKey, nil
}

// DeriveCryptographicKey derives an application-specific key from an
// already-fetched vault encryption key at the given index. Indices below
// 1000 and the device-private-key protection index are reserved for this
// core's internal use; callers should pick indices their own application
// namespaces distinctly.
func (c *Client) DeriveCryptographicKey(vaultKey []byte, index uint64) ([]byte, error) {
	return crypto.DeriveK(vaultKey, index)
}

// ChangeUserPasswordValidated proves oldPassword is correct via a
// vault-unlock round trip before re-keying the knowledge-factor envelope,
// unlike session.ChangeUserPasswordUnsafe which trusts the caller.
func (c *Client) ChangeUserPasswordValidated(ctx context.Context, oldPassword, newPassword []byte, possession []byte) error {
	vaultKey, err := c.FetchVaultEncryptionKey(ctx, session.UnlockKeys{
		Possession: possession,
		Password:   oldPassword,
	})
	if err != nil {
		return err
	}
	defer crypto.Zeroize(vaultKey)

	return c.session.ChangeUserPasswordUnsafe(oldPassword, newPassword)
}

// AddBiometryFactorValidated proves the current possession factor is
// valid via a vault-unlock round trip, then enrolls the biometry factor
// under biometryUnlockKey.
func (c *Client) AddBiometryFactorValidated(ctx context.Context, possession, biometryUnlockKey []byte) error {
	vaultKey, err := c.FetchVaultEncryptionKey(ctx, session.UnlockKeys{Possession: possession})
	if err != nil {
		return err
	}
	defer crypto.Zeroize(vaultKey)

	return c.session.AddBiometryFactor(vaultKey, biometryUnlockKey)
}

// SignWithDevicePrivateKey proves the caller can unlock the requested
// factors via a vault-unlock round trip, then signs payload with the
// device's own ECDSA private key.
func (c *Client) SignWithDevicePrivateKey(ctx context.Context, unlock session.UnlockKeys, payload []byte) ([]byte, error) {
	vaultKey, err := c.FetchVaultEncryptionKey(ctx, unlock)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(vaultKey)

	return c.session.SignWithDevicePrivateKey(payload)
}
