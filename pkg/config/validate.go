package config

import (
	"fmt"
	"strings"
)

// Validate checks the loaded values. Load calls it; callers that override
// fields from flags should call it again.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Words.Path) == "" {
		return fmt.Errorf("words.path must not be empty")
	}
	if c.Report.TopN < 1 {
		return fmt.Errorf("report.top_n must be >= 1 (got %d)", c.Report.TopN)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}
	if c.DB.BatchSize < 1 {
		return fmt.Errorf("db.batch_size must be >= 1 (got %d)", c.DB.BatchSize)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (l LogConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", l.Level)
	}
	switch strings.ToLower(strings.TrimSpace(l.Format)) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q", l.Format)
	}
	return nil
}
