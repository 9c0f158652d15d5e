package session

import (
	"context"
	"sync"

	"github.com/ghaggin/cems/internal/model"
	"go.uber.org/zap"
)

// Session is the identity state of one client. The zero value is not
// usable; sessions come from Manager.Open.
type Session struct {
	m *Manager

	mu      sync.RWMutex
	user    *model.User
	loading bool
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Loading is true while identity is unknown: before Open completes and
// while a login or registration is pending.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) Authenticated() bool {
	return s.User() != nil
}

func (s *Session) IsAdmin() bool     { return s.hasRole(model.RoleAdmin) }
func (s *Session) IsProfessor() bool { return s.hasRole(model.RoleProfessor) }
func (s *Session) IsStudent() bool   { return s.hasRole(model.RoleStudent) }

func (s *Session) hasRole(r model.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Role == r
}

// Login exchanges credentials for a token. On success the token is
// persisted and the decoded user becomes current; on failure the current
// user is left as it was and an *AuthRejectedError is returned.
func (s *Session) Login(ctx context.Context, username, password string) (*model.User, error) {
	done, err := s.begin(ctx, "login")
	if err != nil {
		return nil, err
	}
	defer done()

	token, err := s.m.auth.Login(ctx, username, password)
	if err != nil {
		return nil, s.m.reject(ctx, "login", msgLoginFailed, err)
	}

	// decode before persisting so an unusable token never reaches storage
	user, err := s.m.userFromToken(token)
	if err != nil {
		return nil, s.m.reject(ctx, "login", msgLoginFailed, err)
	}

	s.m.store.Put(ctx, TokenKey, token)
	s.setUser(user)
	s.m.log.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	s.m.succeed(ctx, "login", msgLoginOK, model.ViewHome)
	return s.User(), nil
}

// Register creates an account. The current user is never changed; the
// caller is sent to the login view on success.
func (s *Session) Register(ctx context.Context, username, password, role string) error {
	done, err := s.begin(ctx, "register")
	if err != nil {
		return err
	}
	defer done()

	r, err := model.ParseRole(role)
	if err != nil {
		return s.m.reject(ctx, "register", msgRegisterFailed, err)
	}

	if err := s.m.auth.Register(ctx, username, password, r); err != nil {
		return s.m.reject(ctx, "register", msgRegisterFailed, err)
	}

	s.m.succeed(ctx, "register", msgRegisterOK, model.ViewLogin)
	return nil
}

// Logout erases the persisted token and clears the current user.
func (s *Session) Logout(ctx context.Context) {
	s.m.store.Remove(ctx, TokenKey)
	s.setUser(nil)

	s.m.notify.Notify(ctx, model.Toast{Kind: model.ToastSuccess, Message: msgLoggedOut})
	s.m.nav.Navigate(ctx, model.ViewLogin)
}

// begin admits one pending auth call per client and raises loading. The
// returned func must be deferred; it lowers loading on every path. A call
// turned away here writes nothing to the client's storage.
func (s *Session) begin(ctx context.Context, op string) (func(), error) {
	key := s.m.clientKey(ctx)
	if !s.m.gate.Acquire(key) {
		s.m.metrics.AuthAttempt(op, "busy")
		return nil, ErrAuthInProgress
	}

	s.setLoading(true)
	return func() {
		s.setLoading(false)
		s.m.gate.Release(key)
	}, nil
}

func (s *Session) finishOpen(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.loading = false
}

func (s *Session) setUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}
