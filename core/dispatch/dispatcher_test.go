package dispatch

import (
	"math"
	"testing"

	"github.com/kilianp07/powerplan/core/model"
)

func gasUnit(name string, cost, min, max float64) *Unit {
	return &Unit{
		Plant: model.Powerplant{Name: name, Type: model.PlantGasFired, Efficiency: 0.5, Pmin: min, Pmax: max},
		Cost:  cost,
		Min:   min,
		Max:   max,
	}
}

func outputs(units []*Unit) map[string]float64 {
	m := make(map[string]float64, len(units))
	for _, u := range units {
		m[u.Plant.Name] = u.Output
	}
	return m
}

func TestMeritOrder_CheapestFirst(t *testing.T) {
	units := []*Unit{gasUnit("expensive", 60, 0, 100), gasUnit("cheap", 20, 0, 100)}
	MeritOrderDispatcher{}.Dispatch(units, 150)
	got := outputs(units)
	if got["cheap"] != 100 || got["expensive"] != 50 {
		t.Fatalf("unexpected allocation %v", got)
	}
}

func TestMeritOrder_TiesKeepRequestOrder(t *testing.T) {
	units := []*Unit{gasUnit("first", 30, 0, 100), gasUnit("second", 30, 0, 100)}
	MeritOrderDispatcher{}.Dispatch(units, 60)
	got := outputs(units)
	if got["first"] != 60 || got["second"] != 0 {
		t.Fatalf("tie should favour first listed unit: %v", got)
	}
}

func TestMeritOrder_SkipsUnitBelowPmin(t *testing.T) {
	units := []*Unit{gasUnit("big", 20, 100, 200), gasUnit("small", 40, 0, 100)}
	MeritOrderDispatcher{}.Dispatch(units, 50)
	got := outputs(units)
	if got["big"] != 0 || got["small"] != 50 {
		t.Fatalf("unexpected allocation %v", got)
	}
}

func TestMeritOrder_NoBacktracking(t *testing.T) {
	units := []*Unit{gasUnit("flex", 20, 0, 50), gasUnit("big", 60, 100, 200)}
	MeritOrderDispatcher{}.Dispatch(units, 120)
	got := outputs(units)
	if got["flex"] != 50 || got["big"] != 0 {
		t.Fatalf("single pass should strand the load: %v", got)
	}
}

func TestMeritOrder_InfiniteCostNeverStarted(t *testing.T) {
	broken := gasUnit("broken", math.Inf(1), 0, 500)
	units := []*Unit{broken, gasUnit("ok", 80, 0, 10)}
	MeritOrderDispatcher{}.Dispatch(units, 100)
	if broken.Output != 0 {
		t.Fatalf("unit with infinite cost dispatched")
	}
	if units[1].Output != 10 {
		t.Fatalf("expected 10 got %v", units[1].Output)
	}
}

func TestMeritOrder_NegativeRemaining(t *testing.T) {
	units := []*Unit{gasUnit("g", 20, 0, 100)}
	MeritOrderDispatcher{}.Dispatch(units, -0.1)
	if units[0].Output != 0 {
		t.Fatalf("nothing should be dispatched")
	}
}
