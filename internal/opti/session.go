package opti

import (
	"fmt"
	"log/slog"

	"github.com/rob-mau/hippopt/internal/solver"
)

// Session binds one declarative structure to one solver instance. It is
// the sole owner of the symbol tree it generates; all guess and solution
// operations implicitly reference that tree.
//
// A session is a single-owner pipeline driven from one goroutine:
// Generate, then zero or more SetInitialGuess calls, then Solve, then
// Values/CostValue. No locking is needed because there is no concurrent
// access by design.
type Session struct {
	backend solver.Solver
	problem *Problem

	cost    solver.Expr
	symbols Structure

	solution  *solver.Solution
	output    Structure
	costValue float64
	solved    bool
}

// NewSession creates a session around the given solver backend. The
// backend must not be shared with another session.
func NewSession(backend solver.Solver) *Session {
	return &Session{backend: backend}
}

// Generate converts the declared structure into the session's symbol
// tree. The input is never mutated; the returned tree is a rewritten
// deep copy. A new generation discards any previous solution.
func (s *Session) Generate(structure Structure) (Structure, error) {
	out, err := s.generateStructure(structure)
	if err != nil {
		return nil, err
	}

	s.symbols = out
	s.solution = nil
	s.output = nil
	s.solved = false

	return out, nil
}

// Symbols returns the session's current symbol tree, or nil before
// Generate ran.
func (s *Session) Symbols() Structure {
	return s.symbols
}

// SetInitialGuess validates the guess against the symbol tree and
// forwards leaf values to the backend. May be called repeatedly; each
// call overwrites only the leaves it touches.
func (s *Session) SetInitialGuess(guess Structure) error {
	if s.symbols == nil {
		return fmt.Errorf("set initial guess: no symbol tree has been generated")
	}
	return s.injectStructure(guess, s.symbols, "")
}

// AddCost accumulates a cost term into the session's scalar cost
// expression.
func (s *Session) AddCost(e solver.Expr) {
	if s.cost == nil {
		s.cost = e
		return
	}
	prev := s.cost
	s.cost = func(p solver.Point) float64 {
		return prev(p) + e(p)
	}
}

// AddConstraint forwards a constraint to the backend immediately.
func (s *Session) AddConstraint(c solver.Constraint) {
	s.backend.AddConstraint(c)
}

// CostExpression returns the accumulated cost expression, or nil if no
// cost was added.
func (s *Session) CostExpression() solver.Expr {
	return s.cost
}

// RegisterProblem records the problem this session solves.
func (s *Session) RegisterProblem(p *Problem) {
	s.problem = p
}

// Problem returns the registered problem.
func (s *Session) Problem() (*Problem, error) {
	if s.problem == nil {
		return nil, &ProblemNotRegisteredError{}
	}
	return s.problem, nil
}

// Solve hands the accumulated cost to the backend and runs it. On
// success the solution tree and cost value become available. Backend
// failures are passed through with no retry.
func (s *Session) Solve() error {
	cost := s.cost
	if cost == nil {
		cost = solver.Zero
	}
	s.backend.Minimize(cost)

	sol, err := s.backend.Solve()
	if err != nil {
		return err
	}

	s.solution = sol
	s.costValue = sol.Eval(cost)
	if s.symbols != nil {
		s.output = s.extractStructure(s.symbols)
	}
	s.solved = true

	slog.Debug("Session solved", "cost", s.costValue)
	return nil
}

// Values returns the solution tree, isomorphic to the symbol tree with
// every symbolic leaf replaced by its solved numeric value.
func (s *Session) Values() (Structure, error) {
	if !s.solved || s.output == nil {
		return nil, &SolutionNotAvailableError{}
	}
	return s.output, nil
}

// CostValue returns the cost at the solution.
func (s *Session) CostValue() (float64, error) {
	if !s.solved {
		return 0, &SolutionNotAvailableError{}
	}
	return s.costValue, nil
}

// Trace returns the backend's best-cost history for the last solve.
func (s *Session) Trace() ([]float64, error) {
	if !s.solved {
		return nil, &SolutionNotAvailableError{}
	}
	return s.solution.Trace(), nil
}
