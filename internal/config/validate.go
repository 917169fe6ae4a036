package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtract(); err != nil {
		return err
	}
	if err := c.validateTokens(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateExtract() error {
	switch c.Extract.CarveBoundary {
	case CarveBoundaryTrailer, CarveBoundaryArchive:
	default:
		return fmt.Errorf("extract.carve_boundary must be %q or %q, got %q", CarveBoundaryTrailer, CarveBoundaryArchive, c.Extract.CarveBoundary)
	}
	if c.Extract.Workers <= 0 {
		return errors.New("extract.workers must be positive")
	}
	if c.Extract.IOTimeoutSeconds < 0 {
		return errors.New("extract.io_timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateTokens() error {
	if c.Tokens.Database == "" {
		return errors.New("tokens.database must be set")
	}
	if c.Tokens.RecentDays < 0 {
		return errors.New("tokens.recent_days must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
