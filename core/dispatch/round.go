package dispatch

import (
	"math"

	"github.com/shopspring/decimal"
)

// Step is the output granularity in MW.
const Step = 0.1

// Tolerance is the accepted gap between the planned total and the load in MW.
const Tolerance = 0.01

var halfStep = decimal.New(5, -2)

// Round1 rounds v to the nearest 0.1 MW, halves going up. It is the only
// rounding applied to power values so that every stage agrees on the grid.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Add(halfStep).RoundFloor(1).InexactFloat64()
}

// floor1 aligns v down to the 0.1 MW grid.
func floor1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).RoundFloor(1).InexactFloat64()
}

// ceil1 aligns v up to the 0.1 MW grid.
func ceil1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).RoundCeil(1).InexactFloat64()
}

// OnGrid reports whether v is a multiple of Step within floating point noise.
func OnGrid(v float64) bool {
	scaled := v / Step
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}
