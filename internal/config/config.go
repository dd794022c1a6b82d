package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains the RPC listener configuration.
type Server struct {
	Addr string `toml:"addr"`
}

// Storage contains the database location.
type Storage struct {
	DBPath string `toml:"db_path"`
	// LockPath guards the database against a second server. Default: db_path + ".lock"
	LockPath string `toml:"lock_path"`
}

// Auth contains JWT settings.
type Auth struct {
	JWTSecret  string `toml:"jwt_secret"`
	TokenHours int    `toml:"token_hours"`
	// Required rejects requests without a valid token. When false, such
	// requests act as DevArtist.
	Required  bool   `toml:"required"`
	DevArtist string `toml:"dev_artist"`
}

// Engine contains threshold tracker settings.
type Engine struct {
	ClockSpec string `toml:"clock_spec"`
	Workers   int    `toml:"workers"`
	QueueSize int    `toml:"queue_size"`
}

// Authoring contains authoring session settings.
type Authoring struct {
	SessionTTLMinutes int `toml:"session_ttl_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the server and splitctl.
type Config struct {
	Server    Server    `toml:"server"`
	Storage   Storage   `toml:"storage"`
	Auth      Auth      `toml:"auth"`
	Engine    Engine    `toml:"engine"`
	Authoring Authoring `toml:"authoring"`
	Logging   Logging   `toml:"logging"`
}

// TokenDuration is the lifetime of minted tokens.
func (c *Config) TokenDuration() time.Duration {
	return time.Duration(c.Auth.TokenHours) * time.Hour
}

// SessionTTL is the inactivity timeout of authoring sessions.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Authoring.SessionTTLMinutes) * time.Minute
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It also returns
// the resolved path and whether a file was found there; a missing file is not
// an error.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfig)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// applyEnv lets the environment override the file.
func (c *Config) applyEnv() {
	c.Storage.DBPath = getEnv("DB_PATH", c.Storage.DBPath)
	c.Server.Addr = getEnv("LISTEN_ADDR", c.Server.Addr)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath applies the config path rules (tilde, absolute) to pathValue.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// EnsureDirectories creates the directory holding the database.
func (c *Config) EnsureDirectories() error {
	dir := filepath.Dir(c.Storage.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory %q: %w", dir, err)
	}
	return nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
