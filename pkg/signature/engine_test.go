package signature

import (
	"strings"
	"testing"

	"github.com/powerauth-go/mobile-sdk/pkg/crypto"
	"github.com/powerauth-go/mobile-sdk/pkg/persistence"
	"github.com/powerauth-go/mobile-sdk/pkg/session"
)

func newActiveSession(t *testing.T) (*session.Session, session.UnlockKeys) {
	t.Helper()
	serverKeyPair, err := crypto.P256GenerateKeyPair()
	if err != nil {
		t.Fatalf("server key pair: %v", err)
	}
	sess, err := session.New(session.Config{
		Setup: session.Setup{
			InstanceID:            "engine-instance",
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
	deviceKeyPair, nonce, idShort, otp, _, err := sess.PendingHandshakeMaterial()
	if err != nil {
		t.Fatalf("PendingHandshakeMaterial: %v", err)
	}
	_ = nonce
	_ = idShort
	_ = otp

	possession := mustDeriveK(t, []byte("master-secret-16"), 1)
	knowledge := mustDeriveK(t, []byte("master-secret-16"), 2)
	biometry := mustDeriveK(t, []byte("master-secret-16"), 3)
	transportKey := mustDeriveK(t, []byte("master-secret-16"), 1000)

	if err := sess.ApplyHandshakeResponse(session.HandshakeResult{
		ActivationID:    "AID-0001",
		ServerPublicKey: serverKeyPair.PublicKey(),
		Possession:      possession,
		Knowledge:       knowledge,
		Biometry:        biometry,
		Transport:       transportKey,
		Fingerprint:     "1234 5678",
	}); err != nil {
		t.Fatalf("ApplyHandshakeResponse: %v", err)
	}
	_ = deviceKeyPair

	unlock := session.UnlockKeys{
		Possession: []byte("possession-unlock"),
		Password:   []byte("1234"),
		Biometry:   []byte("biometryunlock16"),
	}
	if err := sess.CommitActivation(unlock); err != nil {
		t.Fatalf("CommitActivation: %v", err)
	}
	return sess, unlock
}

func mustDeriveK(t *testing.T, master []byte, index uint64) []byte {
	t.Helper()
	key, err := crypto.DeriveK(master, index)
	if err != nil {
		t.Fatalf("DeriveK: %v", err)
	}
	return key
}

func TestEnginePossessionOnlySignature(t *testing.T) {
	sess, unlock := newActiveSession(t)
	engine := NewEngine(Config{Session: sess, Persistence: persistence.NewMemoryAdapter()})

	header, err := engine.Sign(Request{
		Method: "POST",
		URIID:  "/pa/signature/validate",
		Body:   []byte(`{"hello":"world"}`),
		Auth: Authentication{
			UsePossession: true,
			UnlockKeys:    session.UnlockKeys{Possession: unlock.Possession},
		},
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !strings.HasPrefix(header, "PowerAuth ") {
		t.Fatalf("header = %q, want PowerAuth prefix", header)
	}
	if !strings.Contains(header, `pa_signature_type="possession"`) {
		t.Fatalf("header missing possession signature type: %q", header)
	}
}

func TestEngineCounterRatchetsAndDiffersAcrossCalls(t *testing.T) {
	sess, unlock := newActiveSession(t)
	engine := NewEngine(Config{Session: sess, Persistence: persistence.NewMemoryAdapter()})

	auth := Authentication{UsePossession: true, UseKnowledge: true, UnlockKeys: session.UnlockKeys{
		Possession: unlock.Possession,
		Password:   unlock.Password,
	}}

	first, err := engine.Sign(Request{Method: "POST", URIID: "/x", Body: []byte("a"), Auth: auth})
	if err != nil {
		t.Fatalf("Sign 1: %v", err)
	}
	second, err := engine.Sign(Request{Method: "POST", URIID: "/x", Body: []byte("a"), Auth: auth})
	if err != nil {
		t.Fatalf("Sign 2: %v", err)
	}
	if first == second {
		t.Fatalf("two signatures over the same body at different counters must differ")
	}

	// Commit starts the counter at 0; two engine signatures ratchet it to 2,
	// so a third signature reports 3.
	third, err := sess.Sign(session.SignRequest{
		Method:     "POST",
		URIID:      "/x",
		Body:       []byte("a"),
		Factors:    session.Possession,
		UnlockKeys: session.UnlockKeys{Possession: unlock.Possession},
	})
	if err != nil {
		t.Fatalf("Sign 3: %v", err)
	}
	if third.Counter != 3 {
		t.Fatalf("counter after two engine signatures = %d, want 3", third.Counter)
	}
}

func TestEngineMissingUnlockKeyFails(t *testing.T) {
	sess, _ := newActiveSession(t)
	engine := NewEngine(Config{Session: sess, Persistence: persistence.NewMemoryAdapter()})

	_, err := engine.Sign(Request{
		Method: "POST",
		URIID:  "/x",
		Body:   nil,
		Auth:   Authentication{UsePossession: true, UseKnowledge: true},
	})
	if err == nil {
		t.Fatalf("expected error signing with knowledge factor but no password supplied")
	}
}

func TestEnginePersistsStateAfterSign(t *testing.T) {
	sess, unlock := newActiveSession(t)
	store := persistence.NewMemoryAdapter()
	engine := NewEngine(Config{Session: sess, Persistence: store})

	if _, err := engine.Sign(Request{
		Method: "POST",
		URIID:  "/x",
		Body:   nil,
		Auth:   Authentication{UsePossession: true, UnlockKeys: session.UnlockKeys{Possession: unlock.Possession}},
	}); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := store.Load(sess.InstanceID()); err != nil {
		t.Fatalf("expected persisted state, got error: %v", err)
	}
}
