package middleware

import (
	"context"
	"encoding/gob"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/cems/internal/config"
	"github.com/ghaggin/cems/internal/model"
	"github.com/ghaggin/cems/internal/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	flashKey = "flash"
)

// SessionManager keeps per-browser state in an scs session: the credential
// token and the queue of pending toasts. It satisfies session.Store and
// session.Notifier for the request a context belongs to.
type SessionManager struct {
	impl *scs.SessionManager
	log  *zap.Logger
}

type SessionParams struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
	Repo   repository.Repository
}

func NewSessionManager(p SessionParams) (*SessionManager, error) {
	gob.Register([]model.Toast{})

	sm := &SessionManager{log: p.Log}
	sm.impl = scs.New()
	sm.impl.Store = p.Repo
	sm.impl.Lifetime = p.Config.Session.Lifetime
	sm.impl.Cookie.Name = p.Config.Session.CookieName
	sm.impl.Cookie.HttpOnly = true
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode
	sm.impl.Cookie.Secure = p.Config.Session.SecureCookie
	sm.impl.ErrorFunc = func(w http.ResponseWriter, r *http.Request, err error) {
		sm.log.Error("session load/save failed", zap.Error(err), zap.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

func (s *SessionManager) Get(ctx context.Context, key string) (string, bool) {
	if !s.impl.Exists(ctx, key) {
		return "", false
	}
	return s.impl.GetString(ctx, key), true
}

func (s *SessionManager) Put(ctx context.Context, key, value string) {
	s.impl.Put(ctx, key, value)
}

func (s *SessionManager) Remove(ctx context.Context, key string) {
	s.impl.Remove(ctx, key)
}

// Notify queues a toast for the next rendered page.
func (s *SessionManager) Notify(ctx context.Context, t model.Toast) {
	queue, _ := s.impl.Get(ctx, flashKey).([]model.Toast)
	s.impl.Put(ctx, flashKey, append(queue, t))
}

// Flashes drains the toast queue in the order the toasts were queued.
func (s *SessionManager) Flashes(ctx context.Context) []model.Toast {
	queue, _ := s.impl.Pop(ctx, flashKey).([]model.Toast)
	return queue
}

// ClientKey identifies the browser session. A session without a token yet
// is given one so that concurrent requests from it share a key.
func (s *SessionManager) ClientKey(ctx context.Context) string {
	if token := s.impl.Token(ctx); token != "" {
		return token
	}
	if err := s.impl.RenewToken(ctx); err != nil {
		s.log.Warn("failed issuing session token", zap.Error(err))
	}
	return s.impl.Token(ctx)
}

// RenewToken rotates the session cookie token, which keeps a token planted
// before login from naming the signed-in session.
func (s *SessionManager) RenewToken(ctx context.Context) error {
	return s.impl.RenewToken(ctx)
}
