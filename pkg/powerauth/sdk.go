package powerauth

import (
	"context"

	"github.com/pion/logging"
	"github.com/powerauth-go/mobile-sdk/pkg/activation"
	"github.com/powerauth-go/mobile-sdk/pkg/persistence"
	"github.com/powerauth-go/mobile-sdk/pkg/session"
	"github.com/powerauth-go/mobile-sdk/pkg/signature"
	"github.com/powerauth-go/mobile-sdk/pkg/transport"
	"github.com/powerauth-go/mobile-sdk/pkg/vault"
)

// Config configures a PowerAuth instance. It mirrors the Setup/adapter
// split used throughout the core: Setup is the immutable application
// configuration, while PersistenceAdapter and RestClient are the
// platform-supplied collaborators for storage and networking.
type Config struct {
	Setup session.Setup

	// PersistenceAdapter stores the session's serialized state between
	// process runs, keyed by Setup.InstanceID.
	PersistenceAdapter persistence.Adapter

	// RestClient issues the four PowerAuth REST endpoints.
	RestClient transport.RestClient

	// LoggerFactory creates every leveled logger used by the core. If
	// nil, logging is disabled throughout.
	LoggerFactory logging.LoggerFactory
}

// PowerAuth is the SDK's single entry point: it owns the Session and
// wires the activation, signature, and vault collaborators around it.
type PowerAuth struct {
	session     *session.Session
	persistence persistence.Adapter
	rest        transport.RestClient
	activation  *activation.Client
	signature   *signature.Engine
	vault       *vault.Client
	log         logging.LeveledLogger
}

// New constructs a PowerAuth instance, restoring any previously persisted
// session state for Config.Setup.InstanceID. A missing or corrupt stored
// blob is not an error: the Session starts Empty, ready for a new
// activation, except that a blob with an unknown version byte leaves it
// Broken until Reset.
func New(cfg Config) (*PowerAuth, error) {
	if cfg.RestClient == nil {
		return nil, ErrRestClientRequired
	}
	if cfg.PersistenceAdapter == nil {
		return nil, ErrPersistenceRequired
	}

	sess, err := session.New(session.Config{Setup: cfg.Setup, LoggerFactory: cfg.LoggerFactory})
	if err != nil {
		return nil, err
	}

	var log logging.LeveledLogger
	if cfg.LoggerFactory != nil {
		log = cfg.LoggerFactory.NewLogger("powerauth")
	}

	if data, err := cfg.PersistenceAdapter.Load(cfg.Setup.InstanceID); err == nil {
		if err := sess.DeserializeState(data); err != nil && log != nil {
			log.Warnf("discarding unreadable persisted session state: %v", err)
		}
	}

	engine := signature.NewEngine(signature.Config{
		Session:       sess,
		Persistence:   cfg.PersistenceAdapter,
		LoggerFactory: cfg.LoggerFactory,
	})

	return &PowerAuth{
		session:     sess,
		persistence: cfg.PersistenceAdapter,
		rest:        cfg.RestClient,
		activation: activation.NewClient(activation.Config{
			Session:       sess,
			Rest:          cfg.RestClient,
			LoggerFactory: cfg.LoggerFactory,
		}),
		signature: engine,
		vault: vault.NewClient(vault.Config{
			Session:       sess,
			Engine:        engine,
			Rest:          cfg.RestClient,
			LoggerFactory: cfg.LoggerFactory,
		}),
		log: log,
	}, nil
}

// HasValidActivation reports whether the session is Active.
func (p *PowerAuth) HasValidActivation() bool { return p.session.HasValidActivation() }

// HasPendingActivation reports whether step 1 has run but step 3 has not.
func (p *PowerAuth) HasPendingActivation() bool { return p.session.HasPendingActivation() }

// HasBiometryFactor reports whether the biometry factor is currently
// enrolled.
func (p *PowerAuth) HasBiometryFactor() bool { return p.session.HasBiometryFactor() }

// ActivationID returns the server-assigned activation id, valid only
// while Active.
func (p *PowerAuth) ActivationID() (string, error) { return p.session.ActivationID() }

// CreateActivation runs activation steps 1 and 2 from a scanned or typed
// activation code.
func (p *PowerAuth) CreateActivation(ctx context.Context, activationIDShort, activationOTP, activationName string) (*activation.Result, error) {
	return p.activation.CreateActivation(ctx, activationIDShort, activationOTP, activationName)
}

// CreateActivationCustom runs the custom activation flow for
// identity-attribute-based enrollment.
func (p *PowerAuth) CreateActivationCustom(ctx context.Context, identityAttributes map[string]string, otpSecret, activationName string) (*activation.Result, error) {
	return p.activation.CreateActivationCustom(ctx, identityAttributes, otpSecret, activationName)
}

// CommitActivation is activation step 3: it wraps the derived factor keys
// under unlock and transitions the session to Active, then persists the
// result.
func (p *PowerAuth) CommitActivation(unlock session.UnlockKeys) error {
	if err := p.activation.Commit(unlock); err != nil {
		return err
	}
	p.persist()
	return nil
}

// RequestSignature signs one HTTP request and returns the
// X-PowerAuth-Authorization header value to attach to it.
func (p *PowerAuth) RequestSignature(req signature.Request) (string, error) {
	return p.signature.Sign(req)
}

// FetchVaultEncryptionKey proves unlock is correct via a vault-unlock
// round trip and returns the decrypted vault encryption key.
func (p *PowerAuth) FetchVaultEncryptionKey(ctx context.Context, unlock session.UnlockKeys) ([]byte, error) {
	return p.vault.FetchVaultEncryptionKey(ctx, unlock)
}

// ChangeUserPassword validates oldPassword via a vault-unlock round trip
// before re-keying the knowledge factor envelope under newPassword.
func (p *PowerAuth) ChangeUserPassword(ctx context.Context, possession, oldPassword, newPassword []byte) error {
	err := p.vault.ChangeUserPasswordValidated(ctx, oldPassword, newPassword, possession)
	if err != nil {
		return err
	}
	p.persist()
	return nil
}

// AddBiometryFactor validates possession via a vault-unlock round trip
// before enrolling the biometry factor under biometryUnlockKey.
func (p *PowerAuth) AddBiometryFactor(ctx context.Context, possession, biometryUnlockKey []byte) error {
	if err := p.vault.AddBiometryFactorValidated(ctx, possession, biometryUnlockKey); err != nil {
		return err
	}
	p.persist()
	return nil
}

// RemoveBiometryFactor discards the biometry envelope, if any.
func (p *PowerAuth) RemoveBiometryFactor() error {
	if err := p.session.RemoveBiometryFactor(); err != nil {
		return err
	}
	p.persist()
	return nil
}

// SignDataWithDevicePrivateKey proves unlock is correct via a vault-unlock
// round trip, then signs payload with the device's own ECDSA private key.
func (p *PowerAuth) SignDataWithDevicePrivateKey(ctx context.Context, unlock session.UnlockKeys, payload []byte) ([]byte, error) {
	return p.vault.SignWithDevicePrivateKey(ctx, unlock, payload)
}

// RemoveActivation signs and sends POST /pa/activation/remove, then resets
// the local session to Empty regardless of the server's reply — a local
// activation the server no longer recognizes must not stay Active.
func (p *PowerAuth) RemoveActivation(ctx context.Context, unlock session.UnlockKeys) error {
	header, err := p.signature.Sign(signature.Request{
		Method: "POST",
		URIID:  "/pa/activation/remove",
		Body:   nil,
		Auth:   signature.Authentication{UsePossession: true, UnlockKeys: unlock},
	})
	if err != nil {
		return err
	}
	_, restErr := p.rest.RemoveActivation(ctx, header)
	p.session.Reset()
	p.persist()
	return restErr
}

// Reset transitions the session to Empty and persists the result.
func (p *PowerAuth) Reset() {
	p.session.Reset()
	p.persist()
}

func (p *PowerAuth) persist() {
	data, err := p.session.SerializeState()
	if err != nil {
		if p.log != nil {
			p.log.Warnf("failed to serialize session state: %v", err)
		}
		return
	}
	if err := p.persistence.Save(p.session.InstanceID(), data); err != nil {
		if p.log != nil {
			p.log.Warnf("failed to persist session state: %v", err)
		}
	}
}
