package dispatch

import (
	"math"

	"github.com/kilianp07/powerplan/core/model"
)

// CO2PerMWh is the emission factor of gas-fired units in tons of CO2 per MWh
// produced.
const CO2PerMWh = 0.3

// UnitCost returns the marginal cost in €/MWh of the plant given the fuel
// prices. Plants that can never run (unknown type, non-positive efficiency)
// cost +Inf.
func UnitCost(p model.Powerplant, f model.Fuels) float64 {
	switch p.Type {
	case model.PlantWindTurbine:
		return 0
	case model.PlantGasFired:
		if p.Efficiency <= 0 {
			return math.Inf(1)
		}
		return f.Gas/p.Efficiency + CO2PerMWh*f.CO2
	case model.PlantTurbojet:
		if p.Efficiency <= 0 {
			return math.Inf(1)
		}
		return f.Kerosine / p.Efficiency
	default:
		return math.Inf(1)
	}
}
