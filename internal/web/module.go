package web

import (
	"github.com/ghaggin/cems/internal/api"
	"github.com/ghaggin/cems/internal/events"
	"github.com/ghaggin/cems/internal/middleware"
	"github.com/ghaggin/cems/internal/session"
	"go.uber.org/fx"
)

// Module binds the browser-session adapters to the interfaces the session
// manager and event catalog consume, and provides the Server.
var Module = fx.Options(
	fx.Provide(
		func(sm *middleware.SessionManager) session.Store { return sm },
		func(sm *middleware.SessionManager) session.Notifier { return sm },
		func(sm *middleware.SessionManager) session.ClientKey { return sm.ClientKey },
		func() session.Navigator { return middleware.Navigator{} },
		func(c *api.Client) session.AuthAPI { return c },
		func(c *api.Client) events.API { return c },
		New,
	),
)
