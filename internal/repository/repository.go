package repository

import (
	"errors"
	"fmt"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/ghaggin/cems/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	errTableFileIsDir = errors.New("table file is dir")
)

// Repository persists encoded browser sessions by their cookie token.
type Repository interface {
	scs.Store
}

type Params struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Log    *zap.Logger
}

// New picks the session backend named in the config.
func New(p Params) (Repository, error) {
	switch p.Config.Session.Store {
	case config.StoreMemory:
		return memstore.New(), nil
	case config.StoreFile:
		return NewJSON(p)
	case config.StoreRedis:
		return NewRedis(p)
	}
	return nil, fmt.Errorf("unrecognized session store %q", p.Config.Session.Store)
}
