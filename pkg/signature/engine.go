package signature

import (
	"github.com/pion/logging"
	"github.com/powerauth-go/mobile-sdk/pkg/persistence"
	"github.com/powerauth-go/mobile-sdk/pkg/session"
)

// Engine signs HTTP requests against one Session and persists the
// Session's serialized state after every successful signature, so the
// ratcheted counter survives a process restart.
type Engine struct {
	session     *session.Session
	persistence persistence.Adapter
	log         logging.LeveledLogger
}

// Config configures an Engine.
type Config struct {
	Session     *session.Session
	Persistence persistence.Adapter

	// LoggerFactory creates the leveled logger used to report save
	// failures. If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// NewEngine constructs a signature Engine.
func NewEngine(cfg Config) *Engine {
	e := &Engine{session: cfg.Session, persistence: cfg.Persistence}
	if cfg.LoggerFactory != nil {
		e.log = cfg.LoggerFactory.NewLogger("signature")
	}
	return e
}

// Request carries the HTTP request fields the signature base string is
// built from, plus the caller's chosen authentication factors.
type Request struct {
	Method string
	URIID  string
	Body   []byte
	Auth   Authentication
}

// Sign authenticates req against the Engine's Session, ratcheting its
// counter, and returns the formatted "X-PowerAuth-Authorization" header
// value. The updated session state is saved to the persistence adapter
// before returning; per §4.F a save failure is logged as a warning and
// does not fail the call, since the in-memory counter (already ratcheted)
// remains authoritative for the next signature regardless of whether this
// one made it to disk.
func (e *Engine) Sign(req Request) (string, error) {
	result, err := e.session.Sign(session.SignRequest{
		Method:     req.Method,
		URIID:      req.URIID,
		Body:       req.Body,
		Factors:    req.Auth.factorMask(),
		UnlockKeys: req.Auth.UnlockKeys,
	})
	if err != nil {
		return "", err
	}

	e.persist()

	return formatHeader(result), nil
}

func (e *Engine) persist() {
	if e.persistence == nil {
		return
	}
	data, err := e.session.SerializeState()
	if err != nil {
		if e.log != nil {
			e.log.Warnf("failed to serialize session state after signing: %v", err)
		}
		return
	}
	if err := e.persistence.Save(e.session.InstanceID(), data); err != nil {
		if e.log != nil {
			e.log.Warnf("failed to persist session state after signing: %v", err)
		}
	}
}
