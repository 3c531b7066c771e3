package dispatch

import (
	"math"
	"math/bits"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// DefaultMaxCommitmentUnits bounds the commitment search to 2^n sets.
const DefaultMaxCommitmentUnits = 12

// CommitmentDispatcher searches the commitment sets of the dispatchable units
// whose bounds can host the remaining load, solves the economic dispatch of
// each set as a linear program and keeps the cheapest. Unlike the merit order
// pass it never strands a load a unit combination could serve. Fleets larger
// than MaxUnits, or loads no set can host, go to Fallback.
type CommitmentDispatcher struct {
	MaxUnits int
	Fallback Dispatcher
}

// NewCommitmentDispatcher returns a dispatcher falling back to the merit order
// pass.
func NewCommitmentDispatcher(maxUnits int) CommitmentDispatcher {
	if maxUnits <= 0 {
		maxUnits = DefaultMaxCommitmentUnits
	}
	return CommitmentDispatcher{MaxUnits: maxUnits, Fallback: MeritOrderDispatcher{}}
}

// Name implements Dispatcher.
func (CommitmentDispatcher) Name() string { return StrategyCommitment }

// solveEconomicDispatch minimises cost·x subject to lo <= x <= hi and
// sum(x) = target.
func solveEconomicDispatch(cost, lo, hi []float64, target float64) ([]float64, error) {
	n := len(cost)
	g := mat.NewDense(2*n, n, nil)
	h := make([]float64, 2*n)
	for i := range cost {
		g.Set(i, i, 1)
		h[i] = hi[i]
		g.Set(n+i, i, -1)
		h[n+i] = -lo[i]
	}
	a := mat.NewDense(1, n, nil)
	for i := 0; i < n; i++ {
		a.Set(0, i, 1)
	}
	cStd, aStd, bStd := lp.Convert(cost, g, h, a, []float64{target})
	_, sol, err := lp.Simplex(cStd, aStd, bStd, 1e-7, nil)
	if err != nil {
		return nil, err
	}
	// Convert splits each free variable into positive and negative parts.
	x := make([]float64, n)
	for i := range x {
		x[i] = sol[i] - sol[n+i]
	}
	return x, nil
}

// lpSolve can be replaced in tests to simulate solver failures.
var lpSolve = solveEconomicDispatch

// Dispatch implements Dispatcher.
func (d CommitmentDispatcher) Dispatch(units []*Unit, remaining float64) {
	if remaining <= 0 {
		return
	}
	list := meritOrder(units)
	if len(list) == 0 {
		return
	}
	if len(list) > d.MaxUnits {
		d.fallback(units, remaining)
		return
	}

	bestCost := math.Inf(1)
	var bestSet []*Unit
	var bestOut []float64
	for mask := uint(1); mask < 1<<uint(len(list)); mask++ {
		set := make([]*Unit, 0, bits.OnesCount(mask))
		var sumLo, sumHi float64
		for i, u := range list {
			if mask&(1<<uint(i)) != 0 {
				set = append(set, u)
				sumLo += u.Min
				sumHi += u.Max
			}
		}
		if remaining < sumLo-Tolerance || remaining > sumHi+Tolerance {
			continue
		}
		cost := make([]float64, len(set))
		lo := make([]float64, len(set))
		hi := make([]float64, len(set))
		for i, u := range set {
			cost[i], lo[i], hi[i] = u.Cost, u.Min, u.Max
		}
		x, err := lpSolve(cost, lo, hi, remaining)
		if err != nil {
			continue
		}
		var total float64
		for i := range x {
			total += cost[i] * x[i]
		}
		if total < bestCost {
			bestCost, bestSet, bestOut = total, set, x
		}
	}
	if bestSet == nil {
		d.fallback(units, remaining)
		return
	}
	for i, u := range bestSet {
		out := Round1(bestOut[i])
		out = math.Max(math.Min(out, u.Max), u.Min)
		u.Output = out
	}
}

func (d CommitmentDispatcher) fallback(units []*Unit, remaining float64) {
	if d.Fallback != nil {
		d.Fallback.Dispatch(units, remaining)
	}
}
