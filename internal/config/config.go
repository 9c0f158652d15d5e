package config

import (
	"errors"
	"fmt"
	"time"
)

var (
	errNoAPIBaseURL    = errors.New("api base url is required")
	errUnknownStore    = errors.New("unrecognized session store")
	errNoRedisAddr     = errors.New("redis session store requires an address")
	errNoFileStorePath = errors.New("file session store requires a path")
)

type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreFile   StoreKind = "file"
	StoreRedis  StoreKind = "redis"
)

type Config struct {
	Server  Server  `yaml:"server"`
	API     API     `yaml:"api"`
	Session Session `yaml:"session"`
	Token   Token   `yaml:"token"`
	Log     Log     `yaml:"log"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Session struct {
	Lifetime     time.Duration `yaml:"lifetime"`
	CookieName   string        `yaml:"cookie_name"`
	SecureCookie bool          `yaml:"secure_cookie"`
	Store        StoreKind     `yaml:"store"`
	FilePath     string        `yaml:"file_path"`
	Redis        Redis         `yaml:"redis"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Token controls how the front end reads credential tokens. An empty
// VerifySecret means claims are decoded without checking the signature.
type Token struct {
	VerifySecret string `yaml:"verify_secret"`
}

type Log struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level"`
}

// Path is the location of the YAML config file. Empty means defaults and
// environment only.
type Path string

func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            "localhost:8123",
			ShutdownTimeout: 10 * time.Second,
		},
		API: API{
			BaseURL: "http://localhost:5000/api",
			Timeout: 15 * time.Second,
		},
		Session: Session{
			Lifetime:   24 * time.Hour,
			CookieName: "cems_session",
			Store:      StoreMemory,
			FilePath:   "sessions.json",
			Redis: Redis{
				Prefix: "cems:session:",
			},
		},
		Log: Log{
			Development: true,
			Level:       "info",
		},
	}
}

func New(path Path) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := readYAML(string(path), cfg); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errNoAPIBaseURL
	}

	switch c.Session.Store {
	case StoreMemory:
	case StoreFile:
		if c.Session.FilePath == "" {
			return errNoFileStorePath
		}
	case StoreRedis:
		if c.Session.Redis.Addr == "" {
			return errNoRedisAddr
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownStore, c.Session.Store)
	}
	return nil
}
