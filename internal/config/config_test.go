package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/royaltysplit/internal/config"
)

// isolate points HOME at a temp dir and clears the overriding env vars.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"DB_PATH", "LISTEN_ADDR", "JWT_SECRET", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := isolate(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(home, ".config", "royaltysplit", "config.toml"); resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}
	if !filepath.IsAbs(cfg.Storage.DBPath) || filepath.Base(cfg.Storage.DBPath) != "royalty.db" {
		t.Fatalf("unexpected db path: %q", cfg.Storage.DBPath)
	}
	if cfg.Storage.LockPath != cfg.Storage.DBPath+".lock" {
		t.Fatalf("unexpected lock path: %q", cfg.Storage.LockPath)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %q", cfg.Server.Addr)
	}
	if !cfg.Auth.Required {
		t.Fatal("expected auth to be required by default")
	}
	if cfg.TokenDuration() != 24*time.Hour {
		t.Fatalf("token duration = %v", cfg.TokenDuration())
	}
	if cfg.SessionTTL() != 30*time.Minute {
		t.Fatalf("session ttl = %v", cfg.SessionTTL())
	}
	if cfg.Engine.ClockSpec != config.Default().Engine.ClockSpec {
		t.Fatalf("unexpected clock spec: %q", cfg.Engine.ClockSpec)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	isolate(t)

	_, _, _, err := config.Load("")
	if err == nil || !strings.Contains(err.Error(), "auth.jwt_secret") {
		t.Fatalf("expected jwt_secret error, got %v", err)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, `
[server]
addr = ":9000"

[storage]
db_path = "~/royalty/catalog.db"

[auth]
jwt_secret = "from-file"
required = false
dev_artist = " artist-dev "

[engine]
clock_spec = "*/10 * * * * *"
workers = 8

[logging]
format = "JSON"
level = "Debug"
`)
	t.Setenv("LISTEN_ADDR", "127.0.0.1:7000")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("LISTEN_ADDR did not override: %q", cfg.Server.Addr)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("JWT_SECRET did not override: %q", cfg.Auth.JWTSecret)
	}
	if want := filepath.Join(home, "royalty", "catalog.db"); cfg.Storage.DBPath != want {
		t.Errorf("db path = %q, want %q", cfg.Storage.DBPath, want)
	}
	if cfg.Auth.Required || cfg.Auth.DevArtist != "artist-dev" {
		t.Errorf("unexpected auth: %+v", cfg.Auth)
	}
	if cfg.Engine.Workers != 8 || cfg.Engine.QueueSize != config.Default().Engine.QueueSize {
		t.Errorf("unexpected engine: %+v", cfg.Engine)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad clock spec", "[engine]\nclock_spec = \"every minute\"", "engine.clock_spec"},
		{"five field clock spec", "[engine]\nclock_spec = \"* * * * *\"", "engine.clock_spec"},
		{"zero workers", "[engine]\nworkers = 0", "engine.workers"},
		{"zero ttl", "[authoring]\nsession_ttl_minutes = 0", "authoring.session_ttl_minutes"},
		{"negative token hours", "[auth]\ntoken_hours = -1", "auth.token_hours"},
		{"unknown level", "[logging]\nlevel = \"verbose\"", "logging.level"},
		{"unknown key", "[server]\nport = 8080", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("JWT_SECRET", "s3cret")
			_, _, _, err := config.Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSampleConfigLoads(t *testing.T) {
	home := isolate(t)
	t.Setenv("JWT_SECRET", "s3cret")

	path := filepath.Join(home, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if !strings.HasPrefix(cfg.Storage.DBPath, home) {
		t.Errorf("db path not expanded under HOME: %q", cfg.Storage.DBPath)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(cfg.Storage.DBPath)); err != nil || !info.IsDir() {
		t.Errorf("data directory not created: %v", err)
	}
}
