// powerauth-demo exercises a full activation and signed-request cycle
// against an in-process mock server, using an in-memory persistence
// adapter.
//
// It has no network dependency: mockRestClient stands in for a real
// PowerAuth Server, playing out the same ECDH/ECDSA handshake a real
// server would so the demo is a faithful (if offline) walkthrough of the
// protocol.
//
// Usage:
//
//	powerauth-demo
package main

import (
	"context"
	"encoding/base64"
	"log"

	"github.com/pion/logging"
	"github.com/powerauth-go/mobile-sdk/pkg/crypto"
	"github.com/powerauth-go/mobile-sdk/pkg/persistence"
	"github.com/powerauth-go/mobile-sdk/pkg/powerauth"
	"github.com/powerauth-go/mobile-sdk/pkg/session"
	"github.com/powerauth-go/mobile-sdk/pkg/signature"
	"github.com/powerauth-go/mobile-sdk/pkg/transport"
)

// mockRestClient plays the server side of the activation handshake well
// enough for a local demo: it owns a master P-256 key pair and signs its
// ephemeral key the same way a real PowerAuth Server would.
type mockRestClient struct {
	masterKeyPair *crypto.P256KeyPair
	activationID  string
}

func newMockRestClient() (*mockRestClient, error) {
	kp, err := crypto.P256GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return &mockRestClient{masterKeyPair: kp, activationID: "c564e700-7e86-4a87-b6c8-a5a0cc89683f"}, nil
}

func (m *mockRestClient) CreateActivation(ctx context.Context, req transport.CreateActivationRequest) (*transport.CreateActivationResponse, error) {
	nonce, err := base64.StdEncoding.DecodeString(req.ActivationNonce)
	if err != nil {
		return nil, err
	}
	ephemeralKeyPair, err := crypto.P256GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	deviceEphemeralPubCompressed, err := base64.StdEncoding.DecodeString(req.EphemeralPublicKey)
	if err != nil {
		return nil, err
	}
	deviceEphemeralPub, err := crypto.P256PublicKeyFromCompressed(deviceEphemeralPubCompressed)
	if err != nil {
		return nil, err
	}
	sharedSecret, err := crypto.P256ECDH(ephemeralKeyPair, deviceEphemeralPub)
	if err != nil {
		return nil, err
	}
	encryptedServerPub, err := crypto.AESCBCEncrypt(sharedSecret[:crypto.AESCBCKeySize], nonce, m.masterKeyPair.PublicKey())
	if err != nil {
		return nil, err
	}
	signedMessage := append(append([]byte(nil), ephemeralKeyPair.PublicKey()...), encryptedServerPub...)
	sig, err := crypto.P256Sign(m.masterKeyPair, signedMessage)
	if err != nil {
		return nil, err
	}
	return &transport.CreateActivationResponse{
		ActivationID:                      m.activationID,
		ActivationNonce:                   req.ActivationNonce,
		EphemeralPublicKey:                base64.StdEncoding.EncodeToString(ephemeralKeyPair.PublicKeyCompressed()),
		EncryptedServerPublicKey:          base64.StdEncoding.EncodeToString(encryptedServerPub),
		EncryptedServerPublicKeySignature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}

func (m *mockRestClient) ActivationStatus(ctx context.Context, req transport.ActivationStatusRequest) (*transport.ActivationStatusResponse, error) {
	return &transport.ActivationStatusResponse{}, nil
}

func (m *mockRestClient) VaultUnlock(ctx context.Context, authorizationHeader string) (*transport.VaultUnlockResponse, error) {
	return &transport.VaultUnlockResponse{}, nil
}

func (m *mockRestClient) RemoveActivation(ctx context.Context, authorizationHeader string) (*transport.RemoveActivationResponse, error) {
	return &transport.RemoveActivationResponse{Status: "REMOVED"}, nil
}

func main() {
	loggerFactory := logging.NewDefaultLoggerFactory()
	logger := loggerFactory.NewLogger("demo")

	rest, err := newMockRestClient()
	if err != nil {
		log.Fatalf("failed to set up mock server: %v", err)
	}

	pa, err := powerauth.New(powerauth.Config{
		Setup: session.Setup{
			InstanceID:            "demo-instance",
			ApplicationKey:        []byte("demo-application-key"),
			ApplicationSecret:     []byte("demo-application-secret"),
			ServerMasterPublicKey: rest.masterKeyPair.PublicKey(),
		},
		PersistenceAdapter: persistence.NewMemoryAdapter(),
		RestClient:         rest,
		LoggerFactory:      loggerFactory,
	})
	if err != nil {
		log.Fatalf("powerauth.New: %v", err)
	}

	ctx := context.Background()

	result, err := pa.CreateActivation(ctx, "ABCDE-FGHIJ", "QWERTYUI", "demo device")
	if err != nil {
		log.Fatalf("CreateActivation: %v", err)
	}
	logger.Infof("activation id %s, fingerprint %s", result.ActivationID, result.Fingerprint)

	unlock := session.UnlockKeys{
		Possession: []byte("platform-keychain-possession-key"),
		Password:   []byte("1234"),
	}
	defer unlock.Zeroize()
	if err := pa.CommitActivation(unlock); err != nil {
		log.Fatalf("CommitActivation: %v", err)
	}
	logger.Info("activation committed, session is now Active")

	header, err := pa.RequestSignature(signature.Request{
		Method: "POST",
		URIID:  "/api/secure/vault/unlock",
		Body:   []byte(`{}`),
		Auth: signature.Authentication{
			UsePossession: true,
			UseKnowledge:  true,
			UnlockKeys:    unlock,
		},
	})
	if err != nil {
		log.Fatalf("RequestSignature: %v", err)
	}
	logger.Infof("signed request header: %s", header)
}
