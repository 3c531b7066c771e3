package config

import (
	"fmt"
	"strings"

	"github.com/kilianp07/powerplan/core/planlog"
)

// LoggingConfig defines application log output and plan log storage.
type LoggingConfig struct {
	// Level is the minimum zerolog level: debug, info, warn or error.
	Level string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
	// Plans configures persistence of computed plans.
	Plans planlog.Config `json:"plans"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	c.Level = strings.ToLower(c.Level)
	c.Plans.SetDefaults()
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Level)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("unknown log format %q", c.Format)
	}
	return c.Plans.Validate()
}
