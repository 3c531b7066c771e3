package dispatch

import (
	"math"

	"github.com/kilianp07/powerplan/core/model"
)

// Unit is the per-call working record of one plant. It is built from the
// request and never shared between calls.
type Unit struct {
	Plant model.Powerplant
	// Index is the position of the plant in the request.
	Index int
	// Cost is the marginal cost in €/MWh.
	Cost float64
	// Min and Max are the output bounds aligned inside the 0.1 MW grid. For
	// wind turbines Max is the weather limited potential.
	Min    float64
	Max    float64
	Output float64
}

// newUnits derives the working records for a request. The request itself is
// left untouched.
func newUnits(req model.PlanRequest) []*Unit {
	units := make([]*Unit, len(req.Powerplants))
	wind := req.Fuels.WindFraction()
	for i, p := range req.Powerplants {
		u := &Unit{Plant: p, Index: i, Cost: UnitCost(p, req.Fuels)}
		switch {
		case p.Type.IsRenewable():
			u.Max = Round1(math.Max(p.Pmax, 0) * wind)
		case p.Type.IsCombustion():
			u.Min = ceil1(math.Max(p.Pmin, 0))
			u.Max = floor1(math.Max(p.Pmax, 0))
		}
		units[i] = u
	}
	return units
}

// Dispatchable reports whether the output of the unit can be chosen by the
// planner.
func (u *Unit) Dispatchable() bool {
	return !u.Plant.Type.IsRenewable() && !math.IsInf(u.Cost, 1) && u.Max > 0
}

// Running reports whether the unit has a non-zero output.
func (u *Unit) Running() bool { return u.Output > 0 }

// Headroom is the output that can still be added without exceeding Max.
func (u *Unit) Headroom() float64 {
	h := Round1(u.Max - u.Output)
	if h < 0 {
		return 0
	}
	return h
}

// Sheddable is the output that can be removed without breaking a non-zero
// minimum. A unit without minimum can be shed entirely.
func (u *Unit) Sheddable() float64 {
	if !u.Running() {
		return 0
	}
	if u.Min == 0 {
		return u.Output
	}
	s := Round1(u.Output - u.Min)
	if s < 0 {
		return 0
	}
	return s
}

func totalOutput(units []*Unit) float64 {
	var sum float64
	for _, u := range units {
		sum += u.Output
	}
	return Round1(sum)
}

func dispatchable(units []*Unit) []*Unit {
	var out []*Unit
	for _, u := range units {
		if u.Dispatchable() {
			out = append(out, u)
		}
	}
	return out
}
