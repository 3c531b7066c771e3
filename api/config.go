package api

import (
	"errors"
	"fmt"
	"time"
)

// DefaultAddr is the listen address of the planning API.
const DefaultAddr = ":8888"

// DefaultOrigins lists the browser front-ends allowed to call the API.
var DefaultOrigins = []string{
	"http://127.0.0.1:5500",
	"http://localhost:5500",
	"https://3mmanu3lmois3s.github.io",
	"null",
}

// RateLimitConfig bounds the requests accepted per client. Zero requests
// disables limiting.
type RateLimitConfig struct {
	Requests      int `json:"requests"`
	WindowSeconds int `json:"window_seconds"`
}

// Window returns the refill period as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// Config configures the HTTP server.
type Config struct {
	Addr           string          `json:"addr"`
	AllowedOrigins []string        `json:"allowed_origins"`
	RateLimit      RateLimitConfig `json:"rate_limit"`
	// LogToken protects GET /api/plans/logs when set.
	LogToken               string `json:"log_token"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds"`
}

func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = append([]string(nil), DefaultOrigins...)
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.ShutdownTimeoutSeconds == 0 {
		c.ShutdownTimeoutSeconds = 5
	}
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("rate_limit.requests %d is negative", c.RateLimit.Requests)
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit.window_seconds must be positive, got %d", c.RateLimit.WindowSeconds)
	}
	if c.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("shutdown_timeout_seconds %d is negative", c.ShutdownTimeoutSeconds)
	}
	return nil
}
