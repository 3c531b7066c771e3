package dispatch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/powerplan/core/model"
)

var testFuels = model.Fuels{Gas: 13.4, Kerosine: 50.8, CO2: 20, Wind: 60}

func TestUnitCost(t *testing.T) {
	gas := model.Powerplant{Name: "g", Type: model.PlantGasFired, Efficiency: 0.53}
	tj := model.Powerplant{Name: "t", Type: model.PlantTurbojet, Efficiency: 0.3}
	wind := model.Powerplant{Name: "w", Type: model.PlantWindTurbine, Efficiency: 1}

	assert.InDelta(t, 13.4/0.53+6, UnitCost(gas, testFuels), 1e-9)
	assert.InDelta(t, 50.8/0.3, UnitCost(tj, testFuels), 1e-9)
	assert.Equal(t, 0.0, UnitCost(wind, testFuels))
}

func TestUnitCostDegenerate(t *testing.T) {
	cases := []model.Powerplant{
		{Name: "g0", Type: model.PlantGasFired, Efficiency: 0},
		{Name: "tneg", Type: model.PlantTurbojet, Efficiency: -0.2},
		{Name: "n", Type: model.PlantType("nuclear"), Efficiency: 0.4},
	}
	for _, p := range cases {
		if c := UnitCost(p, testFuels); !math.IsInf(c, 1) {
			t.Errorf("%s: expected +Inf cost got %v", p.Name, c)
		}
	}
}

func TestNewUnitsBounds(t *testing.T) {
	req := model.PlanRequest{
		Load:  100,
		Fuels: testFuels,
		Powerplants: []model.Powerplant{
			{Name: "w", Type: model.PlantWindTurbine, Pmax: 36},
			{Name: "g", Type: model.PlantGasFired, Efficiency: 0.5, Pmin: 99.91, Pmax: 460.05},
			{Name: "x", Type: model.PlantType("hydro"), Efficiency: 0.9, Pmax: 80},
		},
	}
	units := newUnits(req)
	assert.Equal(t, 21.6, units[0].Max)
	assert.Equal(t, 100.0, units[1].Min)
	assert.Equal(t, 460.0, units[1].Max)
	assert.Equal(t, 0.0, units[2].Max)
	assert.False(t, units[2].Dispatchable())
	assert.Equal(t, 99.91, req.Powerplants[1].Pmin, "request must not be mutated")
}
