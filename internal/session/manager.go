package session

import (
	"context"
	"errors"

	"github.com/ghaggin/cems/internal/metrics"
	"github.com/ghaggin/cems/internal/model"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	msgLoginOK        = "Login successful!"
	msgLoginFailed    = "Login failed. Please check your credentials."
	msgRegisterOK     = "Registration successful! Please login."
	msgRegisterFailed = "Registration failed. Please try again."
	msgLoggedOut      = "Logged out successfully"
)

type Manager struct {
	log       *zap.Logger
	store     Store
	auth      AuthAPI
	notify    Notifier
	nav       Navigator
	decoder   Decoder
	clock     clockwork.Clock
	gate      *Gate
	clientKey ClientKey
	metrics   *metrics.Metrics
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Store     Store
	Auth      AuthAPI
	Notifier  Notifier
	Navigator Navigator
	Decoder   Decoder
	Clock     clockwork.Clock  `optional:"true"`
	Gate      *Gate            `optional:"true"`
	ClientKey ClientKey        `optional:"true"`
	Metrics   *metrics.Metrics `optional:"true"`
}

func New(p Params) *Manager {
	m := &Manager{
		log:       p.Log,
		store:     p.Store,
		auth:      p.Auth,
		notify:    p.Notifier,
		nav:       p.Navigator,
		decoder:   p.Decoder,
		clock:     p.Clock,
		gate:      p.Gate,
		clientKey: p.ClientKey,
		metrics:   p.Metrics,
	}

	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	if m.gate == nil {
		m.gate = NewGate()
	}
	if m.clientKey == nil {
		m.clientKey = func(context.Context) string { return "" }
	}
	return m
}

// Open initializes a Session from the persisted token. Tokens that do not
// decode or have expired are erased and yield an anonymous session.
func (m *Manager) Open(ctx context.Context) *Session {
	s := &Session{m: m, loading: true}

	token, ok := m.store.Get(ctx, TokenKey)
	if !ok || token == "" {
		m.metrics.SessionOpened("none")
		s.finishOpen(nil)
		return s
	}

	user, err := m.userFromToken(token)
	if err != nil {
		m.store.Remove(ctx, TokenKey)

		outcome := "invalid"
		if errors.Is(err, ErrExpiredToken) {
			outcome = "expired"
		}
		m.metrics.SessionOpened(outcome)
		m.log.Debug("discarding persisted token", zap.Error(err))

		s.finishOpen(nil)
		return s
	}

	m.metrics.SessionOpened("valid")
	s.finishOpen(user)
	return s
}

func (m *Manager) userFromToken(token string) (*model.User, error) {
	claims, err := m.decoder.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.expired(m.clock.Now()) {
		return nil, ErrExpiredToken
	}
	return claims.user()
}

// reject reports a failed auth call to the user and wraps it for the caller.
func (m *Manager) reject(ctx context.Context, op, msg string, err error) error {
	m.metrics.AuthAttempt(op, "rejected")
	m.log.Warn(op+" failed", zap.Error(err))
	m.notify.Notify(ctx, model.Toast{Kind: model.ToastError, Message: msg})
	return &AuthRejectedError{Op: op, Err: err}
}

func (m *Manager) succeed(ctx context.Context, op, msg string, next model.View) {
	m.metrics.AuthAttempt(op, "ok")
	m.notify.Notify(ctx, model.Toast{Kind: model.ToastSuccess, Message: msg})
	m.nav.Navigate(ctx, next)
}
