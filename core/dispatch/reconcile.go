package dispatch

import (
	"fmt"
	"math"
	"sort"
)

// ReconcileOrder selects the walk order used to close the gap between the
// dispatched total and the load.
type ReconcileOrder string

const (
	// ReconcilePlanOrder raises units from the last listed one and lowers
	// them from the first listed one.
	ReconcilePlanOrder ReconcileOrder = "plan"
	// ReconcileCostOrder raises the cheapest units first and lowers the most
	// expensive ones first.
	ReconcileCostOrder ReconcileOrder = "cost"
)

// Validate checks the order is known.
func (o ReconcileOrder) Validate() error {
	switch o {
	case ReconcilePlanOrder, ReconcileCostOrder:
		return nil
	default:
		return fmt.Errorf("unknown reconcile order %q", o)
	}
}

// Reconciler nudges dispatchable units inside their bounds until the plan
// total matches the load. Wind is never raised; it is curtailed further only
// when shedding dispatchable units cannot absorb an excess.
type Reconciler struct {
	Order ReconcileOrder
}

// Reconcile adjusts units (given in request order) and returns the residual
// load - total, rounded to the grid. A residual within Tolerance means the
// plan balances.
func (r Reconciler) Reconcile(units []*Unit, load float64) float64 {
	gap := Round1(load - totalOutput(units))
	if math.Abs(gap) <= Tolerance {
		return 0
	}
	list := dispatchable(units)
	if gap > 0 {
		for _, u := range r.raiseOrder(list) {
			if gap <= Tolerance {
				break
			}
			gap = raise(u, gap)
		}
	} else {
		excess := -gap
		for _, u := range r.lowerOrder(list) {
			if excess <= Tolerance {
				break
			}
			excess = lower(u, excess)
		}
		if excess > Tolerance {
			trimWind(units, excess)
		}
	}
	gap = Round1(load - totalOutput(units))
	if math.Abs(gap) <= Tolerance {
		return 0
	}
	return gap
}

func (r Reconciler) raiseOrder(list []*Unit) []*Unit {
	out := make([]*Unit, len(list))
	if r.Order == ReconcileCostOrder {
		copy(out, list)
		sort.SliceStable(out, func(i, j int) bool { return out[i].Cost < out[j].Cost })
		return out
	}
	for i, u := range list {
		out[len(list)-1-i] = u
	}
	return out
}

func (r Reconciler) lowerOrder(list []*Unit) []*Unit {
	out := make([]*Unit, len(list))
	copy(out, list)
	if r.Order == ReconcileCostOrder {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Cost > out[j].Cost })
	}
	return out
}

// raise adds up to gap MW to u and returns the gap left. A stopped unit is
// only started when the gap reaches its minimum.
func raise(u *Unit, gap float64) float64 {
	add := math.Min(gap, u.Headroom())
	if add <= 0 {
		return gap
	}
	if !u.Running() && add < u.Min {
		return gap
	}
	u.Output = Round1(u.Output + add)
	return Round1(gap - add)
}

// trimWind curtails turbines further, one grid step at a time starting with
// the largest output, until excess is absorbed. It only ever lowers wind.
func trimWind(units []*Unit, excess float64) float64 {
	var turbines []*Unit
	for _, u := range units {
		if u.Plant.Type.IsRenewable() && u.Running() {
			turbines = append(turbines, u)
		}
	}
	sort.SliceStable(turbines, func(i, j int) bool { return turbines[i].Output > turbines[j].Output })
	for excess > Tolerance {
		progressed := false
		for _, u := range turbines {
			if excess <= Tolerance {
				break
			}
			step := math.Min(Step, math.Min(excess, u.Output))
			if step <= 0 {
				continue
			}
			u.Output = Round1(u.Output - step)
			excess = Round1(excess - step)
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return excess
}

// lower removes up to excess MW from u and returns the excess left.
func lower(u *Unit, excess float64) float64 {
	shed := math.Min(excess, u.Sheddable())
	if shed <= 0 {
		return excess
	}
	u.Output = Round1(u.Output - shed)
	return Round1(excess - shed)
}
