package model

import "fmt"

// PlantType identifies the technology of a generation unit.
type PlantType string

const (
	PlantWindTurbine PlantType = "windturbine"
	PlantGasFired    PlantType = "gasfired"
	PlantTurbojet    PlantType = "turbojet"
)

// String returns the wire representation of the plant type.
func (t PlantType) String() string { return string(t) }

// IsRenewable reports whether the unit output is set by the weather rather
// than dispatched.
func (t PlantType) IsRenewable() bool { return t == PlantWindTurbine }

// IsCombustion reports whether the unit burns fuel.
func (t PlantType) IsCombustion() bool {
	return t == PlantGasFired || t == PlantTurbojet
}

// Known reports whether the plant type is handled by the planner.
func (t PlantType) Known() bool {
	return t.IsRenewable() || t.IsCombustion()
}

// Powerplant describes one generation unit as received from the caller.
type Powerplant struct {
	Name       string    `json:"name" yaml:"name" validate:"required"`
	Type       PlantType `json:"type" yaml:"type"`
	Efficiency float64   `json:"efficiency" yaml:"efficiency"`
	Pmin       float64   `json:"pmin" yaml:"pmin"` // minimum output in MW once running
	Pmax       float64   `json:"pmax" yaml:"pmax"` // maximum output in MW
}

// Validate reports inconsistent plant definitions. The planner itself never
// calls it: degenerate plants are absorbed, not rejected.
func (p Powerplant) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("powerplant name is required")
	}
	if p.Pmin < 0 || p.Pmax < 0 {
		return fmt.Errorf("powerplant %s: negative bounds", p.Name)
	}
	if p.Pmin > p.Pmax {
		return fmt.Errorf("powerplant %s: pmin %.1f above pmax %.1f", p.Name, p.Pmin, p.Pmax)
	}
	if p.Type.IsCombustion() && (p.Efficiency <= 0 || p.Efficiency > 1) {
		return fmt.Errorf("powerplant %s: efficiency %.2f outside (0,1]", p.Name, p.Efficiency)
	}
	return nil
}
