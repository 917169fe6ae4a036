package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeExtract(); err != nil {
		return err
	}
	if err := c.normalizeTokens(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeExtract() error {
	sources := make([]string, 0, len(c.Extract.Sources))
	for _, src := range c.Extract.Sources {
		if strings.TrimSpace(src) == "" {
			continue
		}
		expanded, err := expandPath(strings.TrimSpace(src))
		if err != nil {
			return fmt.Errorf("extract.sources: %w", err)
		}
		sources = append(sources, expanded)
	}
	c.Extract.Sources = sources

	// Extensions are matched case-sensitively, so only whitespace and a
	// leading dot are stripped.
	seen := make(map[string]struct{}, len(c.Extract.ExcludedExtensions))
	excluded := make([]string, 0, len(c.Extract.ExcludedExtensions))
	for _, ext := range c.Extract.ExcludedExtensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		excluded = append(excluded, ext)
	}
	c.Extract.ExcludedExtensions = excluded

	c.Extract.CarveBoundary = strings.ToLower(strings.TrimSpace(c.Extract.CarveBoundary))
	if c.Extract.CarveBoundary == "" {
		c.Extract.CarveBoundary = defaultCarveBoundary
	}
	if c.Extract.Workers <= 0 {
		c.Extract.Workers = defaultWorkers
	}
	if c.Extract.IOTimeoutSeconds < 0 {
		c.Extract.IOTimeoutSeconds = 0
	}
	c.Extract.SevenZipBinary = strings.TrimSpace(c.Extract.SevenZipBinary)
	if c.Extract.SevenZipBinary == "" {
		c.Extract.SevenZipBinary = defaultSevenZipBinary
	}
	return nil
}

func (c *Config) normalizeTokens() error {
	var err error
	if strings.TrimSpace(c.Tokens.Database) == "" {
		c.Tokens.Database = defaultTokensDatabase
	}
	if c.Tokens.Database, err = expandPath(c.Tokens.Database); err != nil {
		return fmt.Errorf("tokens.database: %w", err)
	}
	if c.Tokens.RecentDays < 0 {
		c.Tokens.RecentDays = 0
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
