package dispatch

import (
	"errors"
	"fmt"
)

// ErrInfeasible indicates the load could not be matched within Tolerance.
var ErrInfeasible = errors.New("production plan infeasible")

// InfeasibleError carries the mismatch of a best-effort plan. Residual is
// load minus planned total: positive when under-produced.
type InfeasibleError struct {
	Load     float64
	Residual float64
}

func (e *InfeasibleError) Error() string {
	if e.Residual > 0 {
		return fmt.Sprintf("%v: %.1f MW of %.1f MW left unallocated", ErrInfeasible, e.Residual, e.Load)
	}
	return fmt.Sprintf("%v: %.1f MW produced above %.1f MW load", ErrInfeasible, -e.Residual, e.Load)
}

// Unwrap allows errors.Is(err, ErrInfeasible).
func (e *InfeasibleError) Unwrap() error { return ErrInfeasible }
