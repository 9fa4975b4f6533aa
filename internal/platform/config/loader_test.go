package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoaderDefaultsWhenFileMissing(t *testing.T) {
	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "missing.yaml"))

	res, err := loader.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if res.Path != "" {
		t.Fatalf("expected empty origin path, got %q", res.Path)
	}
	if res.Config.Store.Driver != "memory" {
		t.Fatalf("expected memory driver default, got %q", res.Config.Store.Driver)
	}
	if res.Config.Store.LogCap != 7 {
		t.Fatalf("expected log cap 7, got %d", res.Config.Store.LogCap)
	}
	if !res.Config.Auth.DevLogin.Enabled {
		t.Fatal("expected dev login enabled when running on defaults")
	}
}

func TestLoaderReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 6100
store:
  driver: redis
  log_cap: 9
  redis:
    addr: 127.0.0.1:6379
auth:
  jwt_secret: unit-test-secret
  token_ttl: 1h
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	res, err := NewLoader().WithDotEnv(false).WithPath(path).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cfg := res.Config
	if res.Path != path {
		t.Fatalf("expected origin %q, got %q", path, res.Path)
	}
	if cfg.Server.Port != 6100 {
		t.Fatalf("expected port 6100, got %d", cfg.Server.Port)
	}
	if cfg.Store.Driver != "redis" || cfg.Store.Redis.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.DevLogin.Enabled {
		t.Fatal("dev login must be off unless the config file enables it")
	}
}

func TestLoaderEnvOverrides(t *testing.T) {
	t.Setenv("WAAPI_PORT", "7001")
	t.Setenv("WAAPI_JWT_SECRET", "env-secret")
	t.Setenv("WAAPI_STORE_DRIVER", "sqlite")
	t.Setenv("WAAPI_SQLITE_DSN", "file::memory:?cache=shared")

	res, err := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "none.yaml")).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cfg := res.Config
	if cfg.Server.Port != 7001 {
		t.Fatalf("expected env port override, got %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("expected env secret override, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.SQLite.DSN != "file::memory:?cache=shared" {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
}
