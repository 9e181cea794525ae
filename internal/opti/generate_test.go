package opti

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-mau/hippopt/internal/nd"
	"github.com/rob-mau/hippopt/internal/solver"
)

func TestGenerateSingleVariable(t *testing.T) {
	backend := newFakeSolver()
	sess := NewSession(backend)

	// Rank-1 declared value, promoted to a (3,1) column.
	rec := NewRecord("state", VariableField("position", nd.NewVector(0, 0, 0)))

	out, err := sess.Generate(rec)
	require.NoError(t, err)

	require.Len(t, backend.shapes, 1)
	assert.Equal(t, solver.Shape{Rows: 3, Cols: 1}, backend.shapes[0])
	assert.Equal(t, "variable", backend.roles[0])

	symRec := out.(*Record)
	f, ok := symRec.Field("position")
	require.True(t, ok)
	require.NotNil(t, f.Sym)
	assert.Nil(t, f.Value, "declared value must be replaced by the handle")
	assert.Equal(t, solver.Shape{Rows: 3, Cols: 1}, f.Sym.Shape)
}

func TestGenerateDoesNotMutateInput(t *testing.T) {
	sess := NewSession(newFakeSolver())

	rec := NewRecord("state",
		VariableField("x", nd.NewMatrix(2, 2)),
		ParameterListField("w", nd.NewVector(1), nd.NewVector(2)),
		CompositeField("inner", NewRecord("inner", VariableField("y", nd.NewVector(1)))),
		DataField("label", "untouched"),
	)
	snapshot := rec.Clone()

	_, err := sess.Generate(rec)
	require.NoError(t, err)

	assert.Equal(t, snapshot, rec, "generate must not mutate its input")
}

func TestGenerateMissingValue(t *testing.T) {
	sess := NewSession(newFakeSolver())

	rec := NewRecord("state", VariableField("x", nil))

	_, err := sess.Generate(rec)
	require.ErrorIs(t, err, &MissingValueError{})
	assert.Contains(t, err.Error(), "x")
}

func TestGenerateRankTooHigh(t *testing.T) {
	sess := NewSession(newFakeSolver())

	rec := NewRecord("state", VariableField("tensor", nd.Zeros(2, 2, 2)))

	_, err := sess.Generate(rec)
	require.ErrorIs(t, err, &UnsupportedRankError{})
}

func TestGenerateStorageList(t *testing.T) {
	backend := newFakeSolver()
	sess := NewSession(backend)

	rec := NewRecord("state", ParameterListField("weights",
		nd.NewMatrix(2, 1), nd.NewMatrix(2, 1), nd.NewMatrix(2, 1)))

	out, err := sess.Generate(rec)
	require.NoError(t, err)

	require.Len(t, backend.shapes, 3)
	for i := range backend.shapes {
		assert.Equal(t, solver.Shape{Rows: 2, Cols: 1}, backend.shapes[i])
		assert.Equal(t, "parameter", backend.roles[i])
	}

	f, _ := out.(*Record).Field("weights")
	require.Len(t, f.Syms, 3)
	assert.Nil(t, f.Values)
}

func TestGenerateStorageListMissingElement(t *testing.T) {
	sess := NewSession(newFakeSolver())

	rec := NewRecord("state", VariableListField("u", nd.NewVector(1), nil))

	_, err := sess.Generate(rec)
	require.ErrorIs(t, err, &MissingValueError{})
	assert.Contains(t, err.Error(), "u[1]")
}

func TestGenerateNestedCompositeList(t *testing.T) {
	backend := newFakeSolver()
	sess := NewSession(backend)

	leg := func() *Record {
		return NewRecord("leg", VariableField("force", nd.NewMatrix(1, 1)))
	}
	rec := NewRecord("robot", CompositeListField("legs", leg(), leg()))

	out, err := sess.Generate(rec)
	require.NoError(t, err)
	require.Len(t, backend.shapes, 2)

	f, _ := out.(*Record).Field("legs")
	legs, ok := f.Sub.(List)
	require.True(t, ok)
	require.Len(t, legs, 2)
	for _, el := range legs {
		lf, ok := el.(*Record).Field("force")
		require.True(t, ok)
		assert.NotNil(t, lf.Sym)
	}
}

func TestGenerateListOfLists(t *testing.T) {
	sess := NewSession(newFakeSolver())

	inner := List{
		NewRecord("b", VariableField("x", nd.NewVector(1))),
		NewRecord("b", VariableField("x", nd.NewVector(1))),
	}
	out, err := sess.Generate(List{inner})
	require.NoError(t, err)

	top, ok := out.(List)
	require.True(t, ok)
	nested, ok := top[0].(List)
	require.True(t, ok)
	assert.Len(t, nested, 2)
}

func TestGenerateListInputRegistersTree(t *testing.T) {
	sess := NewSession(newFakeSolver())

	structure := List{
		NewRecord("a", VariableField("x", nd.NewVector(1))),
		NewRecord("a", VariableField("x", nd.NewVector(1))),
	}

	out, err := sess.Generate(structure)
	require.NoError(t, err)
	assert.Equal(t, out, sess.Symbols())
}

func TestGeneratePlainFieldUntouched(t *testing.T) {
	sess := NewSession(newFakeSolver())

	rec := NewRecord("state",
		DataField("label", "pointmass"),
		VariableField("x", nd.NewVector(1)),
	)

	out, err := sess.Generate(rec)
	require.NoError(t, err)

	f, _ := out.(*Record).Field("label")
	assert.Equal(t, "pointmass", f.Data)
}
