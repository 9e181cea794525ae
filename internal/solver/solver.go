package solver

import (
	"fmt"

	"github.com/rob-mau/hippopt/internal/nd"
)

// Shape describes the dimensions of a symbolic leaf. Vectors follow the
// column convention, so a length-N vector has shape (N,1).
type Shape struct {
	Rows int
	Cols int
}

// Count returns the number of scalar entries covered by the shape.
func (s Shape) Count() int {
	return s.Rows * s.Cols
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d,%d)", s.Rows, s.Cols)
}

// ShapeOf derives the shape of a numeric array after column promotion.
func ShapeOf(a *nd.Array) Shape {
	col := a.AsColumn()
	return Shape{Rows: col.Rows(), Cols: col.Cols()}
}

// Handle identifies a symbolic leaf (decision variable or parameter)
// created by a Solver. Handles are only meaningful to the solver that
// issued them.
type Handle int

// Point provides concrete numeric values for symbolic handles during
// expression evaluation.
type Point interface {
	// Value returns the current value of the given handle, or nil if the
	// handle is unknown.
	Value(h Handle) *nd.Array
}

// Expr is a scalar expression over symbolic handles. Costs and
// constraint residuals are both expressed this way.
type Expr func(p Point) float64

// Zero is the additive identity expression.
func Zero(Point) float64 { return 0 }

// ConstraintKind distinguishes equality from inequality constraints.
type ConstraintKind int

const (
	// Eq requires the residual to be zero.
	Eq ConstraintKind = iota
	// LessEq requires the residual to be non-positive.
	LessEq
)

// Constraint couples a residual expression with its kind.
type Constraint struct {
	Residual Expr
	Kind     ConstraintKind
}

// Equal builds an equality constraint (residual == 0).
func Equal(e Expr) Constraint {
	return Constraint{Residual: e, Kind: Eq}
}

// AtMost builds an inequality constraint (residual <= 0).
func AtMost(e Expr) Constraint {
	return Constraint{Residual: e, Kind: LessEq}
}

// Solver is the boundary to the external NLP engine. Implementations own
// symbol creation, guess state, and the solve itself; everything above
// this interface only shuffles trees of handles and values.
//
// Error handling conventions:
//   - SetInitial/SetValue return an error on unknown handles, role
//     mismatches, or shape disagreements
//   - Solve returns the engine's failure (non-convergence, missing
//     parameter values) unmodified; no retries happen at this level
type Solver interface {
	// CreateVariable creates a decision variable of the given shape.
	CreateVariable(shape Shape) Handle

	// CreateParameter creates a fixed-but-settable parameter of the
	// given shape. Its value must be set before Solve.
	CreateParameter(shape Shape) Handle

	// SetInitial sets the initial value hint for a decision variable.
	SetInitial(h Handle, value *nd.Array) error

	// SetValue sets the value of a parameter.
	SetValue(h Handle, value *nd.Array) error

	// Minimize sets the objective expression. A later call replaces the
	// previous objective; accumulation is the caller's job.
	Minimize(e Expr)

	// AddConstraint submits a constraint. Constraints are collected as
	// they arrive and enforced during Solve.
	AddConstraint(c Constraint)

	// Solve runs the engine and returns the solution context.
	Solve() (*Solution, error)
}
