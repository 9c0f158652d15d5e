package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghaggin/cems/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_noToken(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)

	s := f.manager.Open(context.Background())

	assert.Nil(s.User())
	assert.False(s.Loading())
	assert.False(s.Authenticated())
}

func TestOpen_expiredTokenIsErased(t *testing.T) {
	tests := []struct {
		name string
		exp  time.Time
	}{
		{"one second ago", testNow.Add(-time.Second)},
		{"exactly now", testNow},
		{"long ago", testNow.Add(-30 * 24 * time.Hour)},
		{"no expiry", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			f := newFixture(t)
			f.store.Put(ctx, TokenKey, mintToken(t, "1", "alice", "student", tt.exp))

			s := f.manager.Open(ctx)

			assert.Nil(s.User())
			assert.False(s.Loading())
			_, ok := f.store.Get(ctx, TokenKey)
			assert.False(ok)
		})
	}
}

func TestOpen_unusableTokenIsErased(t *testing.T) {
	tests := map[string]func(t *testing.T) string{
		"malformed": func(*testing.T) string { return "not-a-token" },
		"unknown role": func(t *testing.T) string {
			return mintToken(t, "1", "alice", "janitor", testNow.Add(time.Hour))
		},
		"missing id": func(t *testing.T) string {
			return mintToken(t, "", "alice", "student", testNow.Add(time.Hour))
		},
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			f := newFixture(t)
			f.store.Put(ctx, TokenKey, token(t))

			s := f.manager.Open(ctx)

			assert.Nil(s.User())
			_, ok := f.store.Get(ctx, TokenKey)
			assert.False(ok)
			assert.Empty(f.rec.toasts)
		})
	}
}

func TestOpen_validToken(t *testing.T) {
	for _, role := range []model.Role{model.RoleStudent, model.RoleProfessor, model.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			f := newFixture(t)
			token := mintToken(t, "42", "carol", string(role), testNow.Add(time.Second))
			f.store.Put(ctx, TokenKey, token)

			s := f.manager.Open(ctx)

			assert.Equal(&model.User{ID: "42", Username: "carol", Role: role}, s.User())
			assert.False(s.Loading())
			stored, ok := f.store.Get(ctx, TokenKey)
			assert.True(ok)
			assert.Equal(token, stored)
		})
	}
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role                      model.Role
		admin, professor, student bool
	}{
		{model.RoleAdmin, true, false, false},
		{model.RoleProfessor, false, true, false},
		{model.RoleStudent, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			f := newFixture(t)
			f.store.Put(ctx, TokenKey, mintToken(t, "7", "dave", string(tt.role), testNow.Add(time.Hour)))

			s := f.manager.Open(ctx)

			assert.Equal(tt.admin, s.IsAdmin())
			assert.Equal(tt.professor, s.IsProfessor())
			assert.Equal(tt.student, s.IsStudent())
		})
	}

	t.Run("anonymous", func(t *testing.T) {
		s := newFixture(t).manager.Open(context.Background())
		assert.False(t, s.IsAdmin())
		assert.False(t, s.IsProfessor())
		assert.False(t, s.IsStudent())
	})
}

func TestLogin_success(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.auth.token = mintToken(t, "1", "alice", "student", testNow.Add(time.Hour))

	s := f.manager.Open(ctx)
	user, err := s.Login(ctx, "alice", "pw")
	require.NoError(err)

	want := &model.User{ID: "1", Username: "alice", Role: model.RoleStudent}
	assert.Equal(want, user)
	assert.Equal(want, s.User())
	assert.False(s.Loading())

	stored, ok := f.store.Get(ctx, TokenKey)
	assert.True(ok)
	assert.Equal(f.auth.token, stored)

	assert.Equal([]model.View{model.ViewHome}, f.rec.views)
	assert.Equal([]model.ToastKind{model.ToastSuccess}, f.rec.kinds())
}

func TestLogin_replacesRoleWithNewToken(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.store.Put(ctx, TokenKey, mintToken(t, "1", "alice", "student", testNow.Add(time.Hour)))
	f.auth.token = mintToken(t, "1", "alice", "admin", testNow.Add(time.Hour))

	s := f.manager.Open(ctx)
	require.True(s.IsStudent())

	_, err := s.Login(ctx, "alice", "pw")
	require.NoError(err)

	require.True(s.IsAdmin())
	require.False(s.IsStudent())
}

func TestLogin_rejected(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	f := newFixture(t)
	prior := mintToken(t, "2", "bob", "professor", testNow.Add(time.Hour))
	f.store.Put(ctx, TokenKey, prior)
	cause := errors.New("401 unauthorized")
	f.auth.loginErr = cause

	s := f.manager.Open(ctx)
	user, err := s.Login(ctx, "bob", "wrong")
	require.Error(err)
	assert.Nil(user)

	var rejected *AuthRejectedError
	require.ErrorAs(err, &rejected)
	assert.Equal("login", rejected.Op)
	assert.ErrorIs(err, cause)

	assert.Equal(&model.User{ID: "2", Username: "bob", Role: model.RoleProfessor}, s.User())
	assert.False(s.Loading())
	stored, _ := f.store.Get(ctx, TokenKey)
	assert.Equal(prior, stored)
	assert.Equal([]model.ToastKind{model.ToastError}, f.rec.kinds())
	assert.Empty(f.rec.views)
}

func TestLogin_rejectedWhenAnonymousStaysAnonymous(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.auth.loginErr = errors.New("connection refused")

	s := f.manager.Open(ctx)
	_, err := s.Login(ctx, "bob", "wrong")

	require.Error(t, err)
	assert.Nil(t, s.User())
	assert.False(t, s.Loading())
}

func TestLogin_unusableTokenFromServer(t *testing.T) {
	tests := map[string]func(t *testing.T) string{
		"expired":   func(t *testing.T) string { return mintToken(t, "1", "alice", "student", testNow.Add(-time.Minute)) },
		"malformed": func(*testing.T) string { return "garbage" },
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			f := newFixture(t)
			f.auth.token = token(t)

			s := f.manager.Open(ctx)
			_, err := s.Login(ctx, "alice", "pw")

			var rejected *AuthRejectedError
			assert.ErrorAs(err, &rejected)
			assert.Nil(s.User())
			_, ok := f.store.Get(ctx, TokenKey)
			assert.False(ok)
			assert.Equal([]model.ToastKind{model.ToastError}, f.rec.kinds())
		})
	}
}

func TestLogin_loadingOnlyWhilePending(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.auth.token = mintToken(t, "1", "alice", "student", testNow.Add(time.Hour))
	f.auth.entered = make(chan struct{})
	f.auth.release = make(chan struct{})

	s := f.manager.Open(ctx)
	require.False(s.Loading())

	errc := make(chan error, 1)
	go func() {
		_, err := s.Login(ctx, "alice", "pw")
		errc <- err
	}()

	<-f.auth.entered
	require.True(s.Loading())

	close(f.auth.release)
	require.NoError(<-errc)
	require.False(s.Loading())
}

func TestRegister_loadingOnlyWhilePending(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.auth.entered = make(chan struct{})
	f.auth.release = make(chan struct{})

	s := f.manager.Open(ctx)
	require.False(s.Loading())

	errc := make(chan error, 1)
	go func() {
		errc <- s.Register(ctx, "erin", "pw", "student")
	}()

	<-f.auth.entered
	require.True(s.Loading())
	require.Nil(s.User())

	close(f.auth.release)
	require.NoError(<-errc)
	require.False(s.Loading())
}

func TestLogin_secondCallWhilePendingIsRejected(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.auth.token = mintToken(t, "1", "alice", "student", testNow.Add(time.Hour))
	f.auth.entered = make(chan struct{})
	f.auth.release = make(chan struct{})

	s := f.manager.Open(ctx)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Login(ctx, "alice", "pw")
		errc <- err
	}()
	<-f.auth.entered

	_, err := s.Login(ctx, "alice", "pw")
	assert.ErrorIs(err, ErrAuthInProgress)
	assert.True(s.Loading())

	err = s.Register(ctx, "alice", "pw", "student")
	assert.ErrorIs(err, ErrAuthInProgress)

	// turned-away calls leave storage and the toast queue alone
	assert.Empty(f.rec.kinds())
	_, ok := f.store.Get(ctx, TokenKey)
	assert.False(ok)

	close(f.auth.release)
	require.NoError(<-errc)
	assert.Equal(1, f.auth.loginCalls)
	assert.Equal(0, f.auth.registerCalls)

	// the gate is released afterwards
	f.auth.entered = nil
	_, err = s.Login(ctx, "alice", "pw")
	require.NoError(err)
}

func TestRegister_success(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	f := newFixture(t)

	s := f.manager.Open(ctx)
	err := s.Register(ctx, "erin", "pw", "Professor")
	require.NoError(err)

	assert.Equal(model.RoleProfessor, f.auth.lastRole)
	assert.Nil(s.User())
	assert.False(s.Loading())
	assert.Equal([]model.View{model.ViewLogin}, f.rec.views)
	assert.Equal([]model.ToastKind{model.ToastSuccess}, f.rec.kinds())
	_, ok := f.store.Get(ctx, TokenKey)
	assert.False(ok)
}

func TestRegister_rejected(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	f := newFixture(t)
	cause := errors.New("username taken")
	f.auth.registerErr = cause

	s := f.manager.Open(ctx)
	err := s.Register(ctx, "erin", "pw", "student")

	var rejected *AuthRejectedError
	require.ErrorAs(err, &rejected)
	assert.Equal("register", rejected.Op)
	assert.ErrorIs(err, cause)
	assert.False(s.Loading())
	assert.Empty(f.rec.views)
	assert.Equal([]model.ToastKind{model.ToastError}, f.rec.kinds())
}

func TestRegister_unknownRoleNeverCallsAPI(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	s := f.manager.Open(ctx)
	err := s.Register(ctx, "erin", "pw", "dean")

	require.ErrorIs(t, err, model.ErrUnknownRole)
	assert.Equal(t, 0, f.auth.registerCalls)
	assert.False(t, s.Loading())
}

func TestLogout(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.store.Put(ctx, TokenKey, mintToken(t, "3", "frank", "admin", testNow.Add(time.Hour)))

	s := f.manager.Open(ctx)
	assert.True(s.IsAdmin())

	s.Logout(ctx)

	assert.Nil(s.User())
	assert.False(s.IsAdmin())
	_, ok := f.store.Get(ctx, TokenKey)
	assert.False(ok)
	assert.Equal([]model.View{model.ViewLogin}, f.rec.views)
	assert.Equal([]model.ToastKind{model.ToastSuccess}, f.rec.kinds())
}

func TestLogout_anonymous(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	s := f.manager.Open(ctx)
	assert.NotPanics(t, func() { s.Logout(ctx) })
	assert.Nil(t, s.User())
}

func TestUser_returnsCopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.Put(ctx, TokenKey, mintToken(t, "1", "alice", "student", testNow.Add(time.Hour)))

	s := f.manager.Open(ctx)
	u := s.User()
	u.Role = model.RoleAdmin

	assert.False(t, s.IsAdmin())
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := newFixture(t).manager.Open(context.Background())
	got, ok := FromContext(NewContext(context.Background(), s))
	assert.True(t, ok)
	assert.Same(t, s, got)
}
