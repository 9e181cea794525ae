package solver

import "github.com/rob-mau/hippopt/internal/nd"

// Solution is the context returned by a successful solve. Reads are pure
// projections; nothing here mutates solver state.
type Solution struct {
	values map[Handle]*nd.Array
	cost   float64
	trace  []float64
}

// NewSolution creates a solution context from solved handle values, the
// final objective value, and the best-cost history of the run.
func NewSolution(values map[Handle]*nd.Array, cost float64, trace []float64) *Solution {
	return &Solution{values: values, cost: cost, trace: trace}
}

// Value returns the solved numeric value of a handle, or nil if the
// handle is unknown. The returned array is a copy.
func (s *Solution) Value(h Handle) *nd.Array {
	return s.values[h].Clone()
}

// Eval evaluates an expression at the solution point.
func (s *Solution) Eval(e Expr) float64 {
	return e(s)
}

// Cost returns the objective value at the solution.
func (s *Solution) Cost() float64 {
	return s.cost
}

// Trace returns the best-cost history recorded during the solve, one
// entry per improvement.
func (s *Solution) Trace() []float64 {
	return append([]float64{}, s.trace...)
}
