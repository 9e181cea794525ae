package opti

import (
	"github.com/rob-mau/hippopt/internal/nd"
	"github.com/rob-mau/hippopt/internal/solver"
)

// Role tags a storage leaf as a decision variable or a parameter.
type Role int

const (
	// Variable is a decision quantity the solver searches over.
	Variable Role = iota
	// Parameter is externally fixed data, settable before a solve.
	Parameter
)

func (r Role) String() string {
	switch r {
	case Variable:
		return "variable"
	case Parameter:
		return "parameter"
	}
	return "unknown"
}

// Kind declares what a field holds. The list-vs-record ambiguity is
// resolved here, at declaration time: a StorageList is a list of
// independent numeric leaves sharing one role, a CompositeList is a list
// of nested records (or further lists of records).
type Kind int

const (
	// Plain fields carry untagged data, copied verbatim and never
	// touched by the tree walks.
	Plain Kind = iota
	// Storage fields hold a single numeric leaf.
	Storage
	// StorageList fields hold an ordered list of numeric leaves.
	StorageList
	// Composite fields hold a nested record.
	Composite
	// CompositeList fields hold an ordered list of records or nested
	// lists of records.
	CompositeList
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Storage:
		return "storage"
	case StorageList:
		return "storage list"
	case Composite:
		return "composite"
	case CompositeList:
		return "composite list"
	}
	return "unknown"
}

// Structure is a node of a declarative tree: either a single *Record or
// a List of structures.
type Structure interface {
	isStructure()
}

// List is an ordered sequence of records or nested lists.
type List []Structure

func (List) isStructure() {}

// Record is a named, ordered set of fields. The same type serves as the
// declared input, the symbol tree, a guess tree, and the solution tree;
// which payload slots are populated depends on which tree it is.
type Record struct {
	Name   string
	Fields []*Field
}

func (*Record) isStructure() {}

// Symbol is a solver handle together with the shape fixed for it at
// generation time.
type Symbol struct {
	Handle solver.Handle
	Shape  solver.Shape
}

// Field is a single slot of a record.
//
// Payload slots by kind:
//   - Storage: Value (declared / guess / solution), Sym (symbol tree)
//   - StorageList: Values, Syms
//   - Composite: Sub holding a *Record
//   - CompositeList: Sub holding a List
//   - Plain: Data
type Field struct {
	Name string
	Kind Kind
	Role Role // Meaningful for Storage and StorageList only

	Value  *nd.Array
	Values []*nd.Array
	Sym    *Symbol
	Syms   []*Symbol
	Sub    Structure
	Data   any
}

// NewRecord creates a record from ordered fields.
func NewRecord(name string, fields ...*Field) *Record {
	return &Record{Name: name, Fields: fields}
}

// Field looks up a field by name.
func (r *Record) Field(name string) (*Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// VariableField declares a storage leaf with the Variable role. The
// value only carries the shape; a nil value is a guess-tree "skip".
func VariableField(name string, value *nd.Array) *Field {
	return &Field{Name: name, Kind: Storage, Role: Variable, Value: value}
}

// ParameterField declares a storage leaf with the Parameter role.
func ParameterField(name string, value *nd.Array) *Field {
	return &Field{Name: name, Kind: Storage, Role: Parameter, Value: value}
}

// VariableListField declares a list of independent Variable leaves.
func VariableListField(name string, values ...*nd.Array) *Field {
	return &Field{Name: name, Kind: StorageList, Role: Variable, Values: values}
}

// ParameterListField declares a list of independent Parameter leaves.
func ParameterListField(name string, values ...*nd.Array) *Field {
	return &Field{Name: name, Kind: StorageList, Role: Parameter, Values: values}
}

// CompositeField declares a nested record.
func CompositeField(name string, sub *Record) *Field {
	return &Field{Name: name, Kind: Composite, Sub: sub}
}

// CompositeListField declares a list of records or nested lists.
func CompositeListField(name string, elems ...Structure) *Field {
	return &Field{Name: name, Kind: CompositeList, Sub: List(elems)}
}

// DataField declares a plain field, never touched by the tree walks.
func DataField(name string, data any) *Field {
	return &Field{Name: name, Kind: Plain, Data: data}
}

// CloneStructure deep-copies a structure.
func CloneStructure(s Structure) Structure {
	switch v := s.(type) {
	case *Record:
		return v.Clone()
	case List:
		return v.Clone()
	}
	return nil
}

// Clone deep-copies a list element-wise.
func (l List) Clone() List {
	out := make(List, len(l))
	for i, el := range l {
		out[i] = CloneStructure(el)
	}
	return out
}

// Clone deep-copies a record. Plain data is copied by reference, per the
// copied-verbatim contract for untagged fields.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{Name: r.Name, Fields: make([]*Field, len(r.Fields))}
	for i, f := range r.Fields {
		out.Fields[i] = f.Clone()
	}
	return out
}

// Clone deep-copies a field.
func (f *Field) Clone() *Field {
	out := &Field{Name: f.Name, Kind: f.Kind, Role: f.Role, Data: f.Data}
	out.Value = f.Value.Clone()
	if f.Values != nil {
		out.Values = make([]*nd.Array, len(f.Values))
		for i, v := range f.Values {
			out.Values[i] = v.Clone()
		}
	}
	if f.Sym != nil {
		sym := *f.Sym
		out.Sym = &sym
	}
	if f.Syms != nil {
		out.Syms = make([]*Symbol, len(f.Syms))
		for i, s := range f.Syms {
			sym := *s
			out.Syms[i] = &sym
		}
	}
	if f.Sub != nil {
		out.Sub = CloneStructure(f.Sub)
	}
	return out
}
