package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	if c.Server.Addr == "" {
		c.Server.Addr = defaultListenAddr
	}
	c.Auth.JWTSecret = strings.TrimSpace(c.Auth.JWTSecret)
	c.Auth.DevArtist = strings.TrimSpace(c.Auth.DevArtist)
	c.Engine.ClockSpec = strings.TrimSpace(c.Engine.ClockSpec)
	if c.Engine.ClockSpec == "" {
		c.Engine.ClockSpec = defaultClockSpec
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeStorage() error {
	var err error
	if strings.TrimSpace(c.Storage.DBPath) == "" {
		c.Storage.DBPath = defaultDBPath
	}
	if c.Storage.DBPath, err = expandPath(c.Storage.DBPath); err != nil {
		return fmt.Errorf("storage.db_path: %w", err)
	}
	if strings.TrimSpace(c.Storage.LockPath) == "" {
		c.Storage.LockPath = c.Storage.DBPath + ".lock"
	}
	if c.Storage.LockPath, err = expandPath(c.Storage.LockPath); err != nil {
		return fmt.Errorf("storage.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json", "console":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
