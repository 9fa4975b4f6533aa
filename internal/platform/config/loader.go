package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader reads configuration from an optional yaml file with environment
// variable overrides.
type Loader struct {
	useDotEnv bool
	path      string
}

// NewLoader creates a loader that reads from WAAPI_CONFIG or ./config.yaml.
func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the configuration file path (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// Result captures the loaded configuration and its origin path. Path is
// empty when the defaults were used.
type Result struct {
	Config *Config
	Path   string
}

// Load reads the config file when present, falling back to DefaultConfig,
// then applies environment overrides.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		_ = godotenv.Load()
	}

	path := l.path
	if path == "" {
		path = os.Getenv("WAAPI_CONFIG")
	}
	if path == "" {
		path = "config.yaml"
	}

	cfg := DefaultConfig()
	origin := ""

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// An explicit file replaces the dev-login default; it must opt in.
		cfg.Auth.DevLogin = DevLoginConfig{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		origin = path
	case os.IsNotExist(err):
		// No file, defaults apply.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	normalize(cfg)

	return &Result{Config: cfg, Path: origin}, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WAAPI_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WAAPI_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("WAAPI_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("WAAPI_REDIS_ADDR"); v != "" {
		cfg.Store.Redis.Addr = v
	}
	if v := os.Getenv("WAAPI_REDIS_PASSWORD"); v != "" {
		cfg.Store.Redis.Password = v
	}
	if v := os.Getenv("WAAPI_SQLITE_DSN"); v != "" {
		cfg.Store.SQLite.DSN = v
	}
	if v := os.Getenv("WAAPI_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}

func normalize(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5003
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "memory"
	}
	if cfg.Store.LogCap <= 0 {
		cfg.Store.LogCap = 7
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Broadcast.Interval <= 0 {
		cfg.Broadcast.Interval = 10 * time.Second
	}
	if cfg.Broadcast.Heartbeat <= 0 {
		cfg.Broadcast.Heartbeat = 30 * time.Second
	}
	if cfg.Web.StaticDir == "" {
		cfg.Web.StaticDir = "./web"
	}
}
