package nd

import (
	"fmt"
	"strings"
)

// Array is a dense float64 array with an explicit dimension list.
// Rank-1 arrays are vectors, rank-2 arrays are matrices in row-major
// order. Higher ranks can be constructed but are rejected by the layers
// above, which only operate on matrices and column vectors.
type Array struct {
	Dims []int     `json:"dims"`
	Data []float64 `json:"data"`
}

// NewVector creates a rank-1 array from the given values.
func NewVector(values ...float64) *Array {
	data := make([]float64, len(values))
	copy(data, values)
	return &Array{Dims: []int{len(values)}, Data: data}
}

// NewMatrix creates a rank-2 zero array with the given dimensions.
func NewMatrix(rows, cols int) *Array {
	return &Array{Dims: []int{rows, cols}, Data: make([]float64, rows*cols)}
}

// Zeros creates a zero array of arbitrary rank.
func Zeros(dims ...int) *Array {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return &Array{Dims: append([]int{}, dims...), Data: make([]float64, n)}
}

// FromRows creates a rank-2 array from row slices.
// All rows must have the same length.
func FromRows(rows [][]float64) (*Array, error) {
	if len(rows) == 0 {
		return &Array{Dims: []int{0, 0}, Data: nil}, nil
	}

	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), cols)
		}
		data = append(data, row...)
	}

	return &Array{Dims: []int{len(rows), cols}, Data: data}, nil
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int {
	return len(a.Dims)
}

// Len returns the total number of elements.
func (a *Array) Len() int {
	return len(a.Data)
}

// AsColumn promotes a rank-1 array to an (N,1) column matrix.
// Rank-2 (and higher) arrays are returned unchanged.
func (a *Array) AsColumn() *Array {
	if a.Rank() != 1 {
		return a
	}
	return &Array{Dims: []int{len(a.Data), 1}, Data: a.Data}
}

// Rows returns the first dimension, or 0 for an empty array.
func (a *Array) Rows() int {
	if len(a.Dims) == 0 {
		return 0
	}
	return a.Dims[0]
}

// Cols returns the second dimension. Rank-1 arrays report 1 column
// (column-vector convention).
func (a *Array) Cols() int {
	if len(a.Dims) < 2 {
		if len(a.Dims) == 1 {
			return 1
		}
		return 0
	}
	return a.Dims[1]
}

// At reads element (i, j) of a matrix. Panics on rank != 2.
func (a *Array) At(i, j int) float64 {
	if a.Rank() != 2 {
		panic("nd: At requires a rank-2 array")
	}
	return a.Data[i*a.Dims[1]+j]
}

// Set writes element (i, j) of a matrix. Panics on rank != 2.
func (a *Array) Set(i, j int, v float64) {
	if a.Rank() != 2 {
		panic("nd: Set requires a rank-2 array")
	}
	a.Data[i*a.Dims[1]+j] = v
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	if a == nil {
		return nil
	}
	dims := append([]int{}, a.Dims...)
	data := append([]float64{}, a.Data...)
	return &Array{Dims: dims, Data: data}
}

// Equal reports whether two arrays have identical dimensions and values.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Dims) != len(b.Dims) {
		return false
	}
	for i := range a.Dims {
		if a.Dims[i] != b.Dims[i] {
			return false
		}
	}
	if len(a.Data) != len(b.Data) {
		return false
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			return false
		}
	}
	return true
}

// String renders the dimensions and data, e.g. "(3,1)[0 0 0]".
func (a *Array) String() string {
	if a == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.WriteByte('(')
	for i, d := range a.Dims {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", d)
	}
	sb.WriteByte(')')
	fmt.Fprintf(&sb, "%v", a.Data)
	return sb.String()
}
