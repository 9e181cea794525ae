package solver

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"

	"github.com/rob-mau/hippopt/internal/nd"
)

// MayflyOptions configures the mayfly-backed NLP engine.
type MayflyOptions struct {
	Iterations int     // Max optimizer iterations
	Population int     // Population size (the library needs >= 20)
	Seed       int64   // Random seed for reproducibility
	LowerBound float64 // Scalar lower bound applied to every decision scalar
	UpperBound float64 // Scalar upper bound applied to every decision scalar
	Penalty    float64 // Quadratic penalty weight for constraints
}

// DefaultMayflyOptions returns sensible defaults.
func DefaultMayflyOptions() MayflyOptions {
	return MayflyOptions{
		Iterations: 300,
		Population: 30,
		Seed:       42,
		LowerBound: -100,
		UpperBound: 100,
		Penalty:    1e4,
	}
}

type symbolKind int

const (
	kindVariable symbolKind = iota
	kindParameter
)

// symbol is the backend-side record of one handle.
type symbol struct {
	kind    symbolKind
	shape   Shape
	offset  int       // Offset into the decision vector (variables only)
	value   *nd.Array // Parameter value, or variable initial guess
	hasInit bool
}

// Mayfly adapts the external mayfly library to the Solver interface.
// Variables are flattened into a single decision vector; parameters are
// constant data substituted during evaluation; constraints are enforced
// as quadratic penalties on the objective.
type Mayfly struct {
	opts        MayflyOptions
	symbols     []symbol
	dim         int // Total number of decision scalars
	objective   Expr
	constraints []Constraint
}

// NewMayfly creates a mayfly-backed solver with the given options.
func NewMayfly(opts MayflyOptions) *Mayfly {
	return &Mayfly{opts: opts}
}

// CreateVariable creates a decision variable of the given shape.
func (m *Mayfly) CreateVariable(shape Shape) Handle {
	h := Handle(len(m.symbols))
	m.symbols = append(m.symbols, symbol{kind: kindVariable, shape: shape, offset: m.dim})
	m.dim += shape.Count()
	return h
}

// CreateParameter creates a parameter of the given shape. Its value must
// be set via SetValue before Solve.
func (m *Mayfly) CreateParameter(shape Shape) Handle {
	h := Handle(len(m.symbols))
	m.symbols = append(m.symbols, symbol{kind: kindParameter, shape: shape})
	return h
}

func (m *Mayfly) symbolAt(h Handle) (*symbol, error) {
	if h < 0 || int(h) >= len(m.symbols) {
		return nil, fmt.Errorf("unknown handle %d", h)
	}
	return &m.symbols[h], nil
}

func checkShape(want Shape, value *nd.Array) (*nd.Array, error) {
	if value == nil {
		return nil, fmt.Errorf("value cannot be nil")
	}
	col := value.AsColumn()
	got := Shape{Rows: col.Rows(), Cols: col.Cols()}
	if got != want {
		return nil, fmt.Errorf("shape %s does not match %s", got, want)
	}
	return col.Clone(), nil
}

// SetInitial sets the initial value hint for a decision variable.
func (m *Mayfly) SetInitial(h Handle, value *nd.Array) error {
	sym, err := m.symbolAt(h)
	if err != nil {
		return fmt.Errorf("set initial: %w", err)
	}
	if sym.kind != kindVariable {
		return fmt.Errorf("set initial: handle %d is not a variable", h)
	}
	col, err := checkShape(sym.shape, value)
	if err != nil {
		return fmt.Errorf("set initial: %w", err)
	}
	sym.value = col
	sym.hasInit = true
	return nil
}

// SetValue sets the value of a parameter.
func (m *Mayfly) SetValue(h Handle, value *nd.Array) error {
	sym, err := m.symbolAt(h)
	if err != nil {
		return fmt.Errorf("set value: %w", err)
	}
	if sym.kind != kindParameter {
		return fmt.Errorf("set value: handle %d is not a parameter", h)
	}
	col, err := checkShape(sym.shape, value)
	if err != nil {
		return fmt.Errorf("set value: %w", err)
	}
	sym.value = col
	return nil
}

// Minimize sets the objective expression.
func (m *Mayfly) Minimize(e Expr) {
	m.objective = e
}

// AddConstraint collects a constraint for the next Solve.
func (m *Mayfly) AddConstraint(c Constraint) {
	m.constraints = append(m.constraints, c)
}

// vectorPoint exposes a decision vector as a Point. Parameter handles
// resolve to their fixed values.
type vectorPoint struct {
	backend *Mayfly
	x       []float64
}

func (p vectorPoint) Value(h Handle) *nd.Array {
	if h < 0 || int(h) >= len(p.backend.symbols) {
		return nil
	}
	sym := &p.backend.symbols[h]
	if sym.kind == kindParameter {
		return sym.value
	}
	data := p.x[sym.offset : sym.offset+sym.shape.Count()]
	return &nd.Array{Dims: []int{sym.shape.Rows, sym.shape.Cols}, Data: data}
}

// penalized evaluates the objective plus quadratic constraint penalties.
func (m *Mayfly) penalized(objective Expr, x []float64) float64 {
	p := vectorPoint{backend: m, x: x}
	f := objective(p)
	for _, c := range m.constraints {
		r := c.Residual(p)
		switch c.Kind {
		case Eq:
			f += m.opts.Penalty * r * r
		case LessEq:
			if r > 0 {
				f += m.opts.Penalty * r * r
			}
		}
	}
	return f
}

// initialVector assembles the starting point from variable initial
// guesses, zero where none was set.
func (m *Mayfly) initialVector() []float64 {
	x0 := make([]float64, m.dim)
	for i := range m.symbols {
		sym := &m.symbols[i]
		if sym.kind != kindVariable || !sym.hasInit {
			continue
		}
		copy(x0[sym.offset:sym.offset+sym.shape.Count()], sym.value.Data)
	}
	return x0
}

// Solve runs the mayfly engine and returns the solution context.
// All parameters must have values; a missing one fails the solve.
func (m *Mayfly) Solve() (*Solution, error) {
	for i := range m.symbols {
		sym := &m.symbols[i]
		if sym.kind == kindParameter && sym.value == nil {
			return nil, fmt.Errorf("parameter %d has no value set", i)
		}
	}

	objective := m.objective
	if objective == nil {
		objective = Zero
	}

	slog.Info("Starting solve",
		"variables", m.dim,
		"constraints", len(m.constraints),
		"iterations", m.opts.Iterations,
	)

	var trace []float64
	bestSeen := math.Inf(1)
	eval := func(x []float64) float64 {
		f := m.penalized(objective, x)
		if f < bestSeen {
			bestSeen = f
			trace = append(trace, f)
		}
		return f
	}

	x0 := m.initialVector()
	best := x0
	bestCost := eval(x0)

	if m.dim > 0 {
		config := mayfly.NewDefaultConfig()
		config.ObjectiveFunc = eval
		config.ProblemSize = m.dim
		config.MaxIterations = m.opts.Iterations
		config.NPop = m.opts.Population
		config.LowerBound = m.opts.LowerBound
		config.UpperBound = m.opts.UpperBound
		config.Rand = rand.New(rand.NewSource(m.opts.Seed))

		result, err := mayfly.Optimize(config)
		if err != nil {
			return nil, fmt.Errorf("mayfly optimize: %w", err)
		}

		// Keep the guess point if the engine never beat it. The library
		// takes no seed population, so this is how initial guesses stay
		// honored.
		if result.GlobalBest.Cost < bestCost {
			best = result.GlobalBest.Position
			bestCost = result.GlobalBest.Cost
		}
	}

	point := vectorPoint{backend: m, x: best}
	values := make(map[Handle]*nd.Array, len(m.symbols))
	for i := range m.symbols {
		values[Handle(i)] = point.Value(Handle(i)).Clone()
	}

	cost := objective(point)

	slog.Info("Solve complete", "cost", cost, "penalized_cost", bestCost)

	return NewSolution(values, cost, trace), nil
}
