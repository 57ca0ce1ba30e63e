package vault

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/powerauth-go/mobile-sdk/pkg/crypto"
	"github.com/powerauth-go/mobile-sdk/pkg/persistence"
	"github.com/powerauth-go/mobile-sdk/pkg/session"
	"github.com/powerauth-go/mobile-sdk/pkg/signature"
	"github.com/powerauth-go/mobile-sdk/pkg/transport"
)

// fakeVaultTransport hands back a vault encryption key wrapped under
// whatever transport key the test set up, so FetchVaultEncryptionKey can
// be exercised without a real server.
type fakeVaultTransport struct {
	transportKey []byte
	vaultKey     []byte
}

func (f *fakeVaultTransport) CreateActivation(ctx context.Context, req transport.CreateActivationRequest) (*transport.CreateActivationResponse, error) {
	return nil, nil
}
func (f *fakeVaultTransport) ActivationStatus(ctx context.Context, req transport.ActivationStatusRequest) (*transport.ActivationStatusResponse, error) {
	return nil, nil
}
func (f *fakeVaultTransport) VaultUnlock(ctx context.Context, authorizationHeader string) (*transport.VaultUnlockResponse, error) {
	encrypted, err := crypto.AESCBCEncrypt(f.transportKey, crypto.ZeroIV, f.vaultKey)
	if err != nil {
		return nil, err
	}
	return &transport.VaultUnlockResponse{EncryptedVaultEncryptionKey: base64.StdEncoding.EncodeToString(encrypted)}, nil
}
func (f *fakeVaultTransport) RemoveActivation(ctx context.Context, authorizationHeader string) (*transport.RemoveActivationResponse, error) {
	return nil, nil
}

func newTestClient(t *testing.T) (*Client, session.UnlockKeys, []byte) {
	t.Helper()
	serverKeyPair, err := crypto.P256GenerateKeyPair()
	if err != nil {
		t.Fatalf("server key pair: %v", err)
	}
	sess, err := session.New(session.Config{
		Setup: session.Setup{
			InstanceID:            "vault-instance",
			ApplicationKey:        []byte("app-key"),
			ApplicationSecret:     []byte("app-secret"),
			ServerMasterPublicKey: serverKeyPair.PublicKey(),
		},
	})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	if err := sess.BeginActivation("ABCDE-FGHIJ", "OTPSECRET", false); err != nil {
		t.Fatalf("BeginActivation: %v", err)
	}

	transportKey := []byte("transport-key-16")
	if err := sess.ApplyHandshakeResponse(session.HandshakeResult{
		ActivationID:    "AID-0001",
		ServerPublicKey: serverKeyPair.PublicKey(),
		Possession:      []byte("possession-key16"),
		Knowledge:       []byte("knowledge-key-16"),
		Biometry:        []byte("biometry-key--16"),
		Transport:       transportKey,
		Fingerprint:     "1234 5678",
	}); err != nil {
		t.Fatalf("ApplyHandshakeResponse: %v", err)
	}

	unlock := session.UnlockKeys{
		Possession: []byte("possession-unlock"),
		Password:   []byte("1234"),
		Biometry:   []byte("biometryunlock16"),
	}
	if err := sess.CommitActivation(unlock); err != nil {
		t.Fatalf("CommitActivation: %v", err)
	}

	vaultKey := []byte("vault-key-16byte")
	rest := &fakeVaultTransport{transportKey: transportKey, vaultKey: vaultKey}
	engine := signature.NewEngine(signature.Config{Session: sess, Persistence: persistence.NewMemoryAdapter()})
	client := NewClient(Config{Session: sess, Engine: engine, Rest: rest})
	return client, unlock, vaultKey
}

func TestFetchVaultEncryptionKey(t *testing.T) {
	client, unlock, wantVaultKey := newTestClient(t)

	got, err := client.FetchVaultEncryptionKey(context.Background(), unlock)
	if err != nil {
		t.Fatalf("FetchVaultEncryptionKey: %v", err)
	}
	if string(got) != string(wantVaultKey) {
		t.Fatalf("vault key = %q, want %q", got, wantVaultKey)
	}
}

func TestAddBiometryFactorValidated(t *testing.T) {
	client, unlock, _ := newTestClient(t)

	if err := client.AddBiometryFactorValidated(context.Background(), unlock.Possession, []byte("newbiometrykey16")); err != nil {
		t.Fatalf("AddBiometryFactorValidated: %v", err)
	}
	if !client.session.HasBiometryFactor() {
		t.Fatalf("expected biometry factor enrolled")
	}
}

func TestChangeUserPasswordValidated(t *testing.T) {
	client, unlock, _ := newTestClient(t)

	if err := client.ChangeUserPasswordValidated(context.Background(), unlock.Password, []byte("5678"), unlock.Possession); err != nil {
		t.Fatalf("ChangeUserPasswordValidated: %v", err)
	}

	// Signing with the old password must now fail since the envelope was
	// re-keyed under the new one.
	engine := signature.NewEngine(signature.Config{Session: client.session, Persistence: persistence.NewMemoryAdapter()})
	_, err := engine.Sign(signature.Request{
		Method: "POST",
		URIID:  "/x",
		Body:   nil,
		Auth: signature.Authentication{
			UsePossession: true,
			UseKnowledge:  true,
			UnlockKeys: session.UnlockKeys{
				Possession: unlock.Possession,
				Password:   unlock.Password,
			},
		},
	})
	if err == nil {
		t.Fatalf("expected signing with old password to fail after re-key")
	}
}
