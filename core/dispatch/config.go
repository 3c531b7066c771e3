package dispatch

import "fmt"

const (
	StrategyGreedy     = "greedy"
	StrategyCommitment = "commitment"
)

// Config defines planner settings.
type Config struct {
	// Strategy selects the dispatcher: "greedy" or "commitment".
	Strategy string `json:"strategy" yaml:"strategy"`
	// ReconcileOrder selects the reconciliation walk: "plan" or "cost".
	ReconcileOrder ReconcileOrder `json:"reconcile_order" yaml:"reconcile_order"`
	// MaxCommitmentUnits bounds the commitment search.
	MaxCommitmentUnits int `json:"max_commitment_units" yaml:"max_commitment_units"`
	// BestEffort serves unbalanced plans instead of failing the request.
	BestEffort bool `json:"best_effort" yaml:"best_effort"`
}

// SetDefaults applies the merit order behaviour.
func (c *Config) SetDefaults() {
	if c.Strategy == "" {
		c.Strategy = StrategyGreedy
	}
	if c.ReconcileOrder == "" {
		c.ReconcileOrder = ReconcilePlanOrder
	}
	if c.MaxCommitmentUnits <= 0 {
		c.MaxCommitmentUnits = DefaultMaxCommitmentUnits
	}
}

// Validate checks the configured strategies exist.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyGreedy, StrategyCommitment:
	default:
		return fmt.Errorf("unknown dispatch strategy %q", c.Strategy)
	}
	if err := c.ReconcileOrder.Validate(); err != nil {
		return err
	}
	if c.MaxCommitmentUnits > 20 {
		return fmt.Errorf("max_commitment_units %d too large (max 20)", c.MaxCommitmentUnits)
	}
	return nil
}

// NewDispatcher builds the dispatcher named by the configuration.
func (c Config) NewDispatcher() Dispatcher {
	if c.Strategy == StrategyCommitment {
		return NewCommitmentDispatcher(c.MaxCommitmentUnits)
	}
	return MeritOrderDispatcher{}
}
