package opti

import "github.com/rob-mau/hippopt/internal/solver"

// Problem is the user-facing registry of costs and constraints for a
// session. Costs accumulate into a single scalar expression starting
// from the additive identity; constraints are forwarded to the backend
// as they arrive, with no deferred validation.
type Problem struct {
	session     *Session
	constraints int
}

// NewProblem creates a problem bound to the session and registers it.
func (s *Session) NewProblem() *Problem {
	p := &Problem{session: s}
	s.RegisterProblem(p)
	return p
}

// AddCost accumulates a cost term.
func (p *Problem) AddCost(e solver.Expr) {
	p.session.AddCost(e)
}

// AddConstraint submits a constraint.
func (p *Problem) AddConstraint(c solver.Constraint) {
	p.constraints++
	p.session.AddConstraint(c)
}

// Constraints returns the number of constraints submitted so far.
func (p *Problem) Constraints() int {
	return p.constraints
}

// CostExpression returns the accumulated cost expression, or nil if no
// cost has been added yet.
func (p *Problem) CostExpression() solver.Expr {
	return p.session.CostExpression()
}
