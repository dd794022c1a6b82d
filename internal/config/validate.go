package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

// clockParser accepts the same six-field specs as the tracker's scheduler.
var clockParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if c.Authoring.SessionTTLMinutes <= 0 {
		return errors.New("authoring.session_ttl_minutes must be positive")
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.JWTSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("auth.jwt_secret is required. Set JWT_SECRET env var or edit %s (create with 'splitctl config init')", defaultPath)
	}
	if c.Auth.TokenHours <= 0 {
		return errors.New("auth.token_hours must be positive")
	}
	return nil
}

func (c *Config) validateEngine() error {
	if _, err := clockParser.Parse(c.Engine.ClockSpec); err != nil {
		return fmt.Errorf("engine.clock_spec %q: %w", c.Engine.ClockSpec, err)
	}
	if c.Engine.Workers <= 0 {
		return errors.New("engine.workers must be positive")
	}
	if c.Engine.QueueSize < 0 {
		return errors.New("engine.queue_size must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
}
