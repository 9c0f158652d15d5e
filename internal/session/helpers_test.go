package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ghaggin/cems/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var testNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func mintToken(t *testing.T, id, username, role string, exp time.Time) string {
	t.Helper()

	claims := Claims{UserID: id, Username: username, Role: role}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

type fakeAuth struct {
	mu sync.Mutex

	token       string
	loginErr    error
	registerErr error

	loginCalls    int
	registerCalls int
	lastRole      model.Role

	// when set, Login and Register signal entered and wait on release
	entered chan struct{}
	release chan struct{}
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	f.loginCalls++
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}
	return f.token, f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, _, _ string, role model.Role) error {
	f.mu.Lock()
	f.registerCalls++
	f.lastRole = role
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registerErr
}

type recorder struct {
	mu     sync.Mutex
	toasts []model.Toast
	views  []model.View
}

func (r *recorder) Notify(_ context.Context, t model.Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

func (r *recorder) Navigate(_ context.Context, v model.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recorder) kinds() []model.ToastKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kinds []model.ToastKind
	for _, t := range r.toasts {
		kinds = append(kinds, t.Kind)
	}
	return kinds
}

type fixture struct {
	manager *Manager
	store   *MemoryStore
	auth    *fakeAuth
	rec     *recorder
	clock   clockwork.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: NewMemoryStore(),
		auth:  &fakeAuth{},
		rec:   &recorder{},
		clock: clockwork.NewFakeClockAt(testNow),
	}
	f.manager = New(Params{
		Store:     f.store,
		Auth:      f.auth,
		Notifier:  f.rec,
		Navigator: f.rec,
		Decoder:   NewDecoder(""),
		Clock:     f.clock,
	})
	return f
}
