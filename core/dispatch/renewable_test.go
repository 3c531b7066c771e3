package dispatch

import (
	"testing"

	"github.com/kilianp07/powerplan/core/model"
)

func windUnits(wind float64, pmax ...float64) []*Unit {
	req := model.PlanRequest{Fuels: model.Fuels{Wind: wind}}
	for i, p := range pmax {
		req.Powerplants = append(req.Powerplants, model.Powerplant{
			Name: string(rune('a' + i)), Type: model.PlantWindTurbine, Efficiency: 1, Pmax: p,
		})
	}
	return newUnits(req)
}

func TestAllocateWind_Potential(t *testing.T) {
	units := windUnits(60, 90, 36)
	total, remaining := allocateWind(units, 480)
	if units[0].Output != 54 || units[1].Output != 21.6 {
		t.Fatalf("unexpected wind output %v %v", units[0].Output, units[1].Output)
	}
	if total != 75.6 || remaining != 404.4 {
		t.Fatalf("total %v remaining %v", total, remaining)
	}
}

func TestAllocateWind_Curtailment(t *testing.T) {
	units := windUnits(100, 100, 50)
	total, remaining := allocateWind(units, 50)
	if units[0].Output != 33.3 || units[1].Output != 16.7 {
		t.Fatalf("expected proportional curtailment got %v %v", units[0].Output, units[1].Output)
	}
	if total != 50 || remaining != 0 {
		t.Fatalf("total %v remaining %v", total, remaining)
	}
}

func TestAllocateWind_OverCurtailedByRounding(t *testing.T) {
	units := windUnits(100, 10, 10, 10)
	total, remaining := allocateWind(units, 20)
	for _, u := range units {
		if u.Output != 6.7 {
			t.Fatalf("expected 6.7 got %v", u.Output)
		}
	}
	if total != 20.1 || remaining != -0.1 {
		t.Fatalf("total %v remaining %v", total, remaining)
	}
}

func TestAllocateWind_ZeroLoad(t *testing.T) {
	units := windUnits(80, 100)
	total, remaining := allocateWind(units, 0)
	if units[0].Output != 0 || total != 0 || remaining != 0 {
		t.Fatalf("expected no wind for zero load got %v", units[0].Output)
	}
}
