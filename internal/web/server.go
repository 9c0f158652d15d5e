package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/ghaggin/cems/internal/config"
	"github.com/ghaggin/cems/internal/events"
	"github.com/ghaggin/cems/internal/metrics"
	"github.com/ghaggin/cems/internal/middleware"
	"github.com/ghaggin/cems/internal/session"
	"github.com/ghaggin/cems/internal/template"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	log      *zap.Logger
	cfg      *config.Config
	sm       *middleware.SessionManager
	sessions *session.Manager
	catalog  *events.Catalog

	router http.Handler
	server *http.Server
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   *config.Config
	Sessions *middleware.SessionManager
	Manager  *session.Manager
	Catalog  *events.Catalog
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics `optional:"true"`
}

func New(p Params) (*Server, error) {
	s := &Server{
		log:      p.Log,
		cfg:      p.Config,
		sm:       p.Sessions,
		sessions: p.Manager,
		catalog:  p.Catalog,
	}

	root := chi.NewRouter()
	root.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.RequestLogger(p.Log, p.Metrics),
		chimw.Recoverer,
	)

	// No session
	root.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	root.Handle("/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	root.Handle("/static/*", http.StripPrefix("/static", template.Static()))

	root.Group(func(r chi.Router) {
		r.Use(s.sm.Wrap, middleware.Navigation, s.openSession)

		r.Get("/", s.home)
		r.Get("/login", s.loginPage)
		r.Post("/login", s.login)
		r.Get("/register", s.registerPage)
		r.Post("/register", s.register)
		r.Post("/logout", s.logout)

		// Auth
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/events/{id}/rsvp", s.rsvp)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireCreator)
			r.Get("/events/new", s.createEventPage)
			r.Post("/events/new", s.createEvent)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/admin", s.adminPanel)
			r.Post("/admin/events/{id}/status", s.setEventStatus)
		})
	})

	s.router = root
	s.server = &http.Server{
		Addr:    p.Config.Server.Addr,
		Handler: root,
	}
	return s, nil
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start(_ context.Context) error {
	s.log.Info("cems web listening", zap.String("addr", s.server.Addr))
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error starting server", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
