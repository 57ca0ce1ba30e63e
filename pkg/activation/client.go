package activation

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/pion/logging"
	"github.com/powerauth-go/mobile-sdk/pkg/crypto"
	"github.com/powerauth-go/mobile-sdk/pkg/session"
	"github.com/powerauth-go/mobile-sdk/pkg/transport"
)

// Client drives the three-step activation handshake against a
// pkg/session.Session and a pkg/transport.RestClient.
type Client struct {
	session *session.Session
	rest    transport.RestClient
	log     logging.LeveledLogger
}

// Config configures a Client.
type Config struct {
	Session *session.Session
	Rest    transport.RestClient

	// LoggerFactory creates the leveled logger for handshake steps. If
	// nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// NewClient constructs an activation Client.
func NewClient(cfg Config) *Client {
	c := &Client{session: cfg.Session, rest: cfg.Rest}
	if cfg.LoggerFactory != nil {
		c.log = cfg.LoggerFactory.NewLogger("activation")
	}
	return c
}

// Result is returned once step 2 has been verified and applied; commit
// (step 3) is a separate call so the caller can show the fingerprint to
// the user before enrolling factors.
type Result struct {
	ActivationID string
	Fingerprint  string
}

// CreateActivation runs activation steps 1 and 2 against an activation
// code scanned or typed by the user: it sends the device's ephemeral
// public key encrypted under the activation OTP, then verifies and
// applies the server's response. The Session moves Empty -> Pending and
// stays Pending until Commit; on any cryptographic failure it is reset
// back to Empty (§7) and the error is returned. Commit (step 3) is
// a separate call, see Client.Commit.
func (c *Client) CreateActivation(ctx context.Context, activationIDShort, activationOTP, activationName string) (*Result, error) {
	return c.createActivation(ctx, activationIDShort, activationOTP, activationName, false)
}

// CreateActivationCustom runs the custom activation flow: idAttributes is
// canonicalized into the activation-id-short slot, and otpSecret is a
// caller-supplied secret rather than one parsed from an activation code.
// The device public key is wrapped in a non-personalized encryption
// envelope keyed by the server's master public key instead of by a
// PBKDF2-normalized OTP.
func (c *Client) CreateActivationCustom(ctx context.Context, idAttributes map[string]string, otpSecret, activationName string) (*Result, error) {
	if otpSecret == "" {
		return nil, ErrCustomActivationMissingSecret
	}
	idShort := base64.StdEncoding.EncodeToString(crypto.CanonicalizeQueryDictionary(idAttributes))
	return c.createActivation(ctx, idShort, otpSecret, activationName, true)
}

func (c *Client) createActivation(ctx context.Context, activationIDShort, activationOTP, activationName string, custom bool) (*Result, error) {
	if err := c.session.BeginActivation(activationIDShort, activationOTP, custom); err != nil {
		return nil, err
	}

	keyPair, nonce, idShort, otp, _, err := c.session.PendingHandshakeMaterial()
	if err != nil {
		return nil, err
	}

	var encryptedDevicePub []byte
	if custom {
		encryptedDevicePub, err = c.encryptNonPersonalized(keyPair, nonce)
		if err != nil {
			c.session.AbortPendingActivation()
			return nil, ErrEncryptionFailed
		}
	} else {
		otpKey := crypto.PBKDF2SHA256([]byte(otp), []byte(idShort), crypto.KnowledgePBKDF2Iterations, crypto.AESCBCKeySize)
		encryptedDevicePub, err = crypto.AESCBCEncrypt(otpKey, nonce, keyPair.PublicKey())
		crypto.Zeroize(otpKey)
		if err != nil {
			c.session.AbortPendingActivation()
			return nil, fmt.Errorf("activation: %w", session.ErrInvalidActivationData)
		}
	}

	appKey := c.session.ApplicationKey()
	appSecret := c.session.ApplicationSecret()
	appSignature := crypto.HMACSHA256Slice(appSecret, concatStrings(idShort, otp, string(appKey)))
	crypto.Zeroize(appSecret)

	req := transport.CreateActivationRequest{
		ActivationIDShort:        idShort,
		ActivationName:           activationName,
		ActivationNonce:          base64.StdEncoding.EncodeToString(nonce),
		ApplicationKey:           base64.StdEncoding.EncodeToString(appKey),
		ApplicationSignature:     base64.StdEncoding.EncodeToString(appSignature),
		EncryptedDevicePublicKey: base64.StdEncoding.EncodeToString(encryptedDevicePub),
		EphemeralPublicKey:       base64.StdEncoding.EncodeToString(keyPair.PublicKeyCompressed()),
	}

	if c.log != nil {
		c.log.Infof("activation step 1: sending create-activation request for %s", idShort)
	}
	resp, err := c.rest.CreateActivation(ctx, req)
	if err != nil {
		c.session.AbortPendingActivation()
		return nil, fmt.Errorf("activation: %w", err)
	}

	return c.applyStep2(keyPair, resp)
}

// applyStep2 verifies the server's ECDSA signature, derives the shared and
// master secrets, derives the three signature factor keys and the
// transport key, and applies them to the pending session.
func (c *Client) applyStep2(deviceKeyPair *crypto.P256KeyPair, resp *transport.CreateActivationResponse) (*Result, error) {
	serverNonce, err1 := base64.StdEncoding.DecodeString(resp.ActivationNonce)
	serverEphemeralCompressed, err2 := base64.StdEncoding.DecodeString(resp.EphemeralPublicKey)
	encryptedServerPub, err3 := base64.StdEncoding.DecodeString(resp.EncryptedServerPublicKey)
	signature, err4 := base64.StdEncoding.DecodeString(resp.EncryptedServerPublicKeySignature)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		c.session.AbortPendingActivation()
		return nil, fmt.Errorf("activation: %w", session.ErrInvalidActivationData)
	}

	serverEphemeralPub, err := crypto.P256PublicKeyFromCompressed(serverEphemeralCompressed)
	if err != nil {
		c.session.AbortPendingActivation()
		return nil, fmt.Errorf("activation: %w", session.ErrInvalidActivationData)
	}

	signedMessage := append(append([]byte(nil), serverEphemeralPub...), encryptedServerPub...)
	ok, err := crypto.P256Verify(c.session.ServerMasterPublicKey(), signedMessage, signature)
	if err != nil || !ok {
		c.session.AbortPendingActivation()
		return nil, ErrServerSignatureInvalid
	}

	sharedSecret, err := crypto.P256ECDH(deviceKeyPair, serverEphemeralPub)
	if err != nil {
		c.session.AbortPendingActivation()
		return nil, fmt.Errorf("activation: %w", session.ErrInvalidActivationData)
	}

	serverPub, err := crypto.AESCBCDecrypt(sharedSecret[:crypto.AESCBCKeySize], serverNonce, encryptedServerPub)
	crypto.Zeroize(sharedSecret)
	if err != nil {
		c.session.AbortPendingActivation()
		return nil, fmt.Errorf("activation: %w", session.ErrInvalidActivationData)
	}
	if err := crypto.P256ValidatePublicKey(serverPub); err != nil {
		c.session.AbortPendingActivation()
		return nil, fmt.Errorf("activation: %w", session.ErrInvalidActivationData)
	}

	masterSecretFull, err := crypto.P256ECDH(deviceKeyPair, serverPub)
	if err != nil {
		c.session.AbortPendingActivation()
		return nil, fmt.Errorf("activation: %w", session.ErrInvalidActivationData)
	}
	masterSecret := masterSecretFull[:crypto.AESCBCKeySize]
	defer crypto.Zeroize(masterSecret)

	possession, errP := crypto.DeriveK(masterSecret, 1)
	knowledge, errK := crypto.DeriveK(masterSecret, 2)
	biometry, errB := crypto.DeriveK(masterSecret, 3)
	transportKey, errT := crypto.DeriveK(masterSecret, 1000)
	if errP != nil || errK != nil || errB != nil || errT != nil {
		c.session.AbortPendingActivation()
		return nil, fmt.Errorf("activation: %w", session.ErrInvalidActivationData)
	}

	fingerprint := DeviceFingerprint(deviceKeyPair.PublicKey(), []byte(resp.ActivationID))

	if err := c.session.ApplyHandshakeResponse(session.HandshakeResult{
		ActivationID:    resp.ActivationID,
		ServerPublicKey: serverPub,
		Possession:      possession,
		Knowledge:       knowledge,
		Biometry:        biometry,
		Transport:       transportKey,
		Fingerprint:     fingerprint,
	}); err != nil {
		c.session.AbortPendingActivation()
		return nil, err
	}

	if c.log != nil {
		c.log.Infof("activation step 2 verified, activation id %s", resp.ActivationID)
	}
	return &Result{ActivationID: resp.ActivationID, Fingerprint: fingerprint}, nil
}

// encryptNonPersonalized wraps the device public key in an ECIES-like
// envelope keyed off an ECDH exchange with the server master public key,
// used instead of a PBKDF2-normalized OTP key by the custom activation
// flow (§4.C's non-personalized variant).
func (c *Client) encryptNonPersonalized(deviceKeyPair *crypto.P256KeyPair, nonce []byte) ([]byte, error) {
	sharedSecret, err := crypto.P256ECDH(deviceKeyPair, c.session.ServerMasterPublicKey())
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(sharedSecret)
	return crypto.AESCBCEncrypt(sharedSecret[:crypto.AESCBCKeySize], nonce, deviceKeyPair.PublicKey())
}

// Commit is activation step 3: it wraps the derived factor keys under the
// given unlock keys and transitions the session Pending -> Active. Only
// factors with a non-empty unlock key field are enrolled.
func (c *Client) Commit(unlock session.UnlockKeys) error {
	return c.session.CommitActivation(unlock)
}

func concatStrings(parts ...string) []byte {
	var total int
	for _, p := range parts {
		total += len(p)
	}
	out := make([]byte, 0, total)
	for _, p := range parts {
		out = append(out, []byte(p)...)
	}
	return out
}
