// Package traj builds a small trajectory-optimization problem on top of
// the opti binding layer: a 2D double-integrator point mass that has to
// reach a target position with minimal control effort.
//
// The record tree exercises every field kind: per-knot records in a
// composite list, a storage list of controls, parameter leaves for the
// boundary data, and a plain name field.
package traj

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/rob-mau/hippopt/internal/nd"
	"github.com/rob-mau/hippopt/internal/opti"
	"github.com/rob-mau/hippopt/internal/solver"
)

const dims = 2 // Planar point mass

// Config describes one reach task.
type Config struct {
	Knots        int       // Number of trajectory knots (>= 2)
	DT           float64   // Time step between knots
	Start        []float64 // Initial position (x, y)
	Target       []float64 // Target position (x, y)
	EffortWeight float64   // Weight of the control-effort cost term
}

// DefaultConfig returns a small reach task.
func DefaultConfig() Config {
	return Config{
		Knots:        5,
		DT:           0.2,
		Start:        []float64{0, 0},
		Target:       []float64{1, 1},
		EffortWeight: 0.1,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.Knots < 2 {
		return fmt.Errorf("knots must be at least 2, got %d", c.Knots)
	}
	if c.DT <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.DT)
	}
	if len(c.Start) != dims || len(c.Target) != dims {
		return fmt.Errorf("start and target must have %d components", dims)
	}
	return nil
}

// NewStructure declares the trajectory record tree for the config.
// Storage values carry shapes only; the numbers are irrelevant.
func NewStructure(cfg Config) *opti.Record {
	knots := make([]opti.Structure, cfg.Knots)
	for i := range knots {
		knots[i] = opti.NewRecord("knot",
			opti.VariableField("position", nd.NewMatrix(dims, 1)),
			opti.VariableField("velocity", nd.NewMatrix(dims, 1)),
		)
	}

	controls := make([]*nd.Array, cfg.Knots-1)
	for i := range controls {
		controls[i] = nd.NewMatrix(dims, 1)
	}

	return opti.NewRecord("trajectory",
		opti.DataField("name", "pointmass-reach"),
		opti.ParameterField("start", nd.NewMatrix(dims, 1)),
		opti.ParameterField("target", nd.NewMatrix(dims, 1)),
		opti.CompositeListField("knots", knots...),
		opti.VariableListField("controls", controls...),
	)
}

// Problem couples a session with the symbolic trajectory tree.
type Problem struct {
	Session *opti.Session
	Config  Config
	Symbols *opti.Record
}

// Build declares the structure, generates symbols, sets the boundary
// parameters, and registers dynamics constraints and the cost.
func Build(backend solver.Solver, cfg Config) (*Problem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	sess := opti.NewSession(backend)
	out, err := sess.Generate(NewStructure(cfg))
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	symbols := out.(*opti.Record)

	// Boundary data goes in through the regular guess path.
	boundary := opti.NewRecord("trajectory",
		opti.ParameterField("start", nd.NewVector(cfg.Start...)),
		opti.ParameterField("target", nd.NewVector(cfg.Target...)),
	)
	if err := sess.SetInitialGuess(boundary); err != nil {
		return nil, fmt.Errorf("set boundary parameters: %w", err)
	}

	p := &Problem{Session: sess, Config: cfg, Symbols: symbols}
	if err := p.register(); err != nil {
		return nil, err
	}

	slog.Debug("Built reach problem", "knots", cfg.Knots, "dt", cfg.DT)
	return p, nil
}

// component reads one scalar of a symbolic leaf during evaluation.
func component(sym *opti.Symbol, row int) solver.Expr {
	return func(p solver.Point) float64 {
		return p.Value(sym.Handle).Data[row]
	}
}

func (p *Problem) knotSymbol(i int, field string) (*opti.Symbol, error) {
	knotsField, ok := p.Symbols.Field("knots")
	if !ok {
		return nil, fmt.Errorf("symbol tree has no knots field")
	}
	knot := knotsField.Sub.(opti.List)[i].(*opti.Record)
	f, ok := knot.Field(field)
	if !ok {
		return nil, fmt.Errorf("knot has no %s field", field)
	}
	return f.Sym, nil
}

func (p *Problem) register() error {
	problem := p.Session.NewProblem()
	cfg := p.Config

	startField, _ := p.Symbols.Field("start")
	targetField, _ := p.Symbols.Field("target")
	controlsField, _ := p.Symbols.Field("controls")
	start, target := startField.Sym, targetField.Sym
	controls := controlsField.Syms

	// Boundary conditions: the trajectory starts at rest on "start".
	pos0, err := p.knotSymbol(0, "position")
	if err != nil {
		return err
	}
	vel0, err := p.knotSymbol(0, "velocity")
	if err != nil {
		return err
	}
	for row := 0; row < dims; row++ {
		row := row
		problem.AddConstraint(solver.Equal(func(pt solver.Point) float64 {
			return component(pos0, row)(pt) - component(start, row)(pt)
		}))
		problem.AddConstraint(solver.Equal(component(vel0, row)))
	}

	// Euler-integrated double-integrator dynamics between knots.
	for k := 0; k < cfg.Knots-1; k++ {
		pos, err := p.knotSymbol(k, "position")
		if err != nil {
			return err
		}
		vel, err := p.knotSymbol(k, "velocity")
		if err != nil {
			return err
		}
		nextPos, err := p.knotSymbol(k+1, "position")
		if err != nil {
			return err
		}
		nextVel, err := p.knotSymbol(k+1, "velocity")
		if err != nil {
			return err
		}
		u := controls[k]

		for row := 0; row < dims; row++ {
			row := row
			problem.AddConstraint(solver.Equal(func(pt solver.Point) float64 {
				return component(nextPos, row)(pt) - component(pos, row)(pt) -
					cfg.DT*component(vel, row)(pt)
			}))
			problem.AddConstraint(solver.Equal(func(pt solver.Point) float64 {
				return component(nextVel, row)(pt) - component(vel, row)(pt) -
					cfg.DT*component(u, row)(pt)
			}))
		}
	}

	// Cost: distance of the last knot to the target plus control effort.
	last, err := p.knotSymbol(cfg.Knots-1, "position")
	if err != nil {
		return err
	}
	problem.AddCost(func(pt solver.Point) float64 {
		var sum float64
		for row := 0; row < dims; row++ {
			d := component(last, row)(pt) - component(target, row)(pt)
			sum += d * d
		}
		return sum
	})
	problem.AddCost(func(pt solver.Point) float64 {
		var sum float64
		for _, u := range controls {
			for row := 0; row < dims; row++ {
				v := component(u, row)(pt)
				sum += v * v
			}
		}
		return cfg.EffortWeight * sum
	})

	return nil
}

// Solve runs the backend on the registered problem.
func (p *Problem) Solve() error {
	return p.Session.Solve()
}

// Result summarizes a solved reach task.
type Result struct {
	Cost     float64
	Final    []float64 // Final knot position
	Distance float64   // Distance from the final position to the target
	Values   opti.Structure
}

// Result reads the solution tree back. Fails with the session's
// solution-not-available error before a successful solve.
func (p *Problem) Result() (*Result, error) {
	values, err := p.Session.Values()
	if err != nil {
		return nil, err
	}
	cost, err := p.Session.CostValue()
	if err != nil {
		return nil, err
	}

	rec := values.(*opti.Record)
	knotsField, _ := rec.Field("knots")
	lastKnot := knotsField.Sub.(opti.List)[p.Config.Knots-1].(*opti.Record)
	posField, _ := lastKnot.Field("position")

	final := append([]float64{}, posField.Value.Data...)
	var dist float64
	for i := 0; i < dims; i++ {
		d := final[i] - p.Config.Target[i]
		dist += d * d
	}

	return &Result{
		Cost:     cost,
		Final:    final,
		Distance: math.Sqrt(dist),
		Values:   values,
	}, nil
}
