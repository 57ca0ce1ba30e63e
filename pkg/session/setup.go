package session

import (
	"errors"

	"github.com/powerauth-go/mobile-sdk/pkg/crypto"
)

// Setup is the immutable application configuration a Session is built
// from. It never changes for the lifetime of a Session.
type Setup struct {
	// InstanceID names this Session for persistence (the key passed to
	// the persistence adapter's Save/Load/Remove).
	InstanceID string

	// ApplicationKey identifies the application to the server; sent in
	// every activation and signature request.
	ApplicationKey []byte

	// ApplicationSecret is the HMAC key used to prove the application's
	// identity during activation step 1.
	ApplicationSecret []byte

	// ServerMasterPublicKey is the server's long-lived P-256 public key
	// (65-byte uncompressed point), used to verify the server's
	// signature over its ephemeral key during activation step 2.
	ServerMasterPublicKey []byte

	// ExternalEncryptionKey is an optional caller-supplied key (e.g. one
	// held outside this core entirely). It is stored with the Setup and
	// returned by Session.ExternalEncryptionKey; no key derivation in this
	// core uses it.
	ExternalEncryptionKey []byte
}

// Validate checks that Setup carries everything a Session needs before it
// can be constructed. This is the constructor-time check the design notes
// call for: an invalid Setup must never produce a usable Session, so no
// later operation can observe HasValidSetup() == false.
func (s Setup) Validate() error {
	if s.InstanceID == "" {
		return errors.New("session: setup: instance id is empty")
	}
	if len(s.ApplicationKey) == 0 {
		return errors.New("session: setup: application key is empty")
	}
	if len(s.ApplicationSecret) == 0 {
		return errors.New("session: setup: application secret is empty")
	}
	if err := crypto.P256ValidatePublicKey(s.ServerMasterPublicKey); err != nil {
		return errors.New("session: setup: server master public key: " + err.Error())
	}
	return nil
}
