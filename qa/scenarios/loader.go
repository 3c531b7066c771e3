package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/model"
)

// Expected describes the outcome a scenario must reach.
type Expected struct {
	// Plan lists the output per plant. Plants left out are not checked.
	Plan       map[string]float64 `yaml:"plan,omitempty"`
	Infeasible bool               `yaml:"infeasible"`
	Residual   float64            `yaml:"residual,omitempty"`
	// Cost is checked when non-zero, within 0.5 €/h.
	Cost float64 `yaml:"cost,omitempty"`
}

type Scenario struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Dispatch    dispatch.Config   `yaml:"dispatch,omitempty"`
	Request     model.PlanRequest `yaml:"request"`
	Expected    Expected          `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	return &sc, nil
}
