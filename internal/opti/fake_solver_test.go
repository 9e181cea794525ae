package opti

import (
	"github.com/rob-mau/hippopt/internal/nd"
	"github.com/rob-mau/hippopt/internal/solver"
)

// fakeCall records one guess application forwarded to the backend.
type fakeCall struct {
	op     string // "initial" or "value"
	handle solver.Handle
	value  *nd.Array
}

// fakeSolver is a recording backend. Solve returns the values set via
// SetInitial/SetValue, zeros for anything untouched, making round-trip
// assertions trivial.
type fakeSolver struct {
	shapes   []solver.Shape
	roles    []string // "variable" or "parameter" per handle
	calls    []fakeCall
	values   map[solver.Handle]*nd.Array
	solveErr error
}

func newFakeSolver() *fakeSolver {
	return &fakeSolver{values: make(map[solver.Handle]*nd.Array)}
}

func (f *fakeSolver) CreateVariable(shape solver.Shape) solver.Handle {
	f.shapes = append(f.shapes, shape)
	f.roles = append(f.roles, "variable")
	return solver.Handle(len(f.shapes) - 1)
}

func (f *fakeSolver) CreateParameter(shape solver.Shape) solver.Handle {
	f.shapes = append(f.shapes, shape)
	f.roles = append(f.roles, "parameter")
	return solver.Handle(len(f.shapes) - 1)
}

func (f *fakeSolver) SetInitial(h solver.Handle, value *nd.Array) error {
	col := value.AsColumn().Clone()
	f.calls = append(f.calls, fakeCall{op: "initial", handle: h, value: col})
	f.values[h] = col
	return nil
}

func (f *fakeSolver) SetValue(h solver.Handle, value *nd.Array) error {
	col := value.AsColumn().Clone()
	f.calls = append(f.calls, fakeCall{op: "value", handle: h, value: col})
	f.values[h] = col
	return nil
}

func (f *fakeSolver) Minimize(solver.Expr) {}

func (f *fakeSolver) AddConstraint(solver.Constraint) {}

func (f *fakeSolver) Solve() (*solver.Solution, error) {
	if f.solveErr != nil {
		return nil, f.solveErr
	}
	values := make(map[solver.Handle]*nd.Array, len(f.shapes))
	for i, shape := range f.shapes {
		h := solver.Handle(i)
		if v, ok := f.values[h]; ok {
			values[h] = v.Clone()
		} else {
			values[h] = nd.NewMatrix(shape.Rows, shape.Cols)
		}
	}
	return solver.NewSolution(values, 0, nil), nil
}
