package dispatch

import (
	"math"
	"sort"
)

// Dispatcher allocates the load left after wind across the dispatchable units.
// Implementations only write Unit.Output of dispatchable units.
type Dispatcher interface {
	Dispatch(units []*Unit, remaining float64)
	Name() string
}

// meritOrder returns the dispatchable units sorted by ascending marginal cost.
// Equal costs keep request order.
func meritOrder(units []*Unit) []*Unit {
	list := dispatchable(units)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Cost < list[j].Cost })
	return list
}

// MeritOrderDispatcher fills the cheapest units first in a single forward
// pass. A unit whose minimum cannot be reached with the load still needed is
// skipped and never revisited, which can leave a feasible load unmatched.
type MeritOrderDispatcher struct{}

// Name implements Dispatcher.
func (MeritOrderDispatcher) Name() string { return StrategyGreedy }

// Dispatch implements Dispatcher.
func (MeritOrderDispatcher) Dispatch(units []*Unit, remaining float64) {
	var allocated float64
	for _, u := range meritOrder(units) {
		if allocated >= remaining {
			break
		}
		needed := Round1(remaining - allocated)
		if needed <= 0 {
			break
		}
		candidate := math.Min(needed, u.Max)
		if u.Min > 0 && candidate < u.Min {
			continue
		}
		u.Output = Round1(candidate)
		allocated = Round1(allocated + u.Output)
	}
}
