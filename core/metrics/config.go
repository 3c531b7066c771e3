package metrics

import (
	"fmt"

	"github.com/kilianp07/powerplan/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PromAddr is the listen address of the /metrics endpoint when the API
	// server is not used. Empty disables the standalone endpoint.
	PromAddr string `json:"prom_addr"`
}

func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics.sinks[%d]: type required", i)
		}
	}
	return nil
}
