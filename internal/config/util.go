package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	errConfigFileIsDir = errors.New("config file is dir")
)

func readYAML(path string, cfg *Config) error {
	filename, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	finfo, err := os.Stat(filename)
	if err != nil {
		return err
	}
	if finfo.IsDir() {
		return errConfigFileIsDir
	}

	b, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(b, cfg)
}

func applyEnv(cfg *Config) {
	cfg.Server.Addr = getenv("CEMS_ADDR", cfg.Server.Addr)
	cfg.API.BaseURL = getenv("CEMS_API_URL", cfg.API.BaseURL)
	cfg.API.Timeout = getenvDuration("CEMS_API_TIMEOUT", cfg.API.Timeout)
	cfg.Session.Lifetime = getenvDuration("CEMS_SESSION_LIFETIME", cfg.Session.Lifetime)
	cfg.Session.SecureCookie = getenvBool("CEMS_SECURE_COOKIE", cfg.Session.SecureCookie)
	cfg.Session.Store = StoreKind(getenv("CEMS_SESSION_STORE", string(cfg.Session.Store)))
	cfg.Session.FilePath = getenv("CEMS_SESSION_FILE", cfg.Session.FilePath)
	cfg.Session.Redis.Addr = getenv("CEMS_REDIS_ADDR", cfg.Session.Redis.Addr)
	cfg.Session.Redis.Password = getenv("CEMS_REDIS_PASSWORD", cfg.Session.Redis.Password)
	cfg.Token.VerifySecret = getenv("CEMS_TOKEN_SECRET", cfg.Token.VerifySecret)
	cfg.Log.Level = getenv("CEMS_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Development = getenvBool("CEMS_LOG_DEVELOPMENT", cfg.Log.Development)
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
