package main

import (
	"flag"

	"github.com/ghaggin/cems/internal/api"
	"github.com/ghaggin/cems/internal/config"
	"github.com/ghaggin/cems/internal/events"
	"github.com/ghaggin/cems/internal/metrics"
	"github.com/ghaggin/cems/internal/middleware"
	"github.com/ghaggin/cems/internal/repository"
	"github.com/ghaggin/cems/internal/session"
	"github.com/ghaggin/cems/internal/web"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	var configPath = flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	newPath := func() config.Path {
		return config.Path(*configPath)
	}

	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Provide(
			newPath,
			config.New,
			newLogger,
			newDecoder,
			clockwork.NewRealClock,
			metrics.NewRegistry,
			metrics.New,
			repository.New,
			middleware.NewSessionManager,
			session.NewGate,
			session.New,
			api.New,
			events.New,
		),
		web.Module,
		fx.Invoke(web.RegisterHooks),
	)

	app.Run()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}

	if cfg.Log.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}

	return zc.Build()
}

func newDecoder(cfg *config.Config, log *zap.Logger) session.Decoder {
	if cfg.Token.VerifySecret == "" {
		log.Warn("token signatures are not verified; roles only gate rendering")
	}
	return session.NewDecoder(cfg.Token.VerifySecret)
}
