package opti

import (
	"fmt"

	"github.com/rob-mau/hippopt/internal/nd"
	"github.com/rob-mau/hippopt/internal/solver"
)

// generateStructure maps the declared tree to an isomorphic symbol tree,
// delegating leaf creation to the backend. Works on a deep copy; the
// caller's structure is never touched.
func (s *Session) generateStructure(in Structure) (Structure, error) {
	switch v := in.(type) {
	case List:
		out := make(List, len(v))
		for i, el := range v {
			sub, err := s.generateStructure(el)
			if err != nil {
				return nil, err
			}
			out[i] = sub
		}
		return out, nil
	case *Record:
		return s.generateRecord(v)
	}
	return nil, fmt.Errorf("unsupported structure type %T", in)
}

func (s *Session) generateRecord(in *Record) (*Record, error) {
	out := in.Clone()

	for _, f := range out.Fields {
		switch f.Kind {
		case Composite, CompositeList:
			sub, err := s.generateStructure(f.Sub)
			if err != nil {
				return nil, err
			}
			f.Sub = sub

		case Storage:
			sym, err := s.newSymbol(f.Name, f.Role, f.Value)
			if err != nil {
				return nil, err
			}
			f.Sym = sym
			f.Value = nil

		case StorageList:
			syms := make([]*Symbol, len(f.Values))
			for i, v := range f.Values {
				sym, err := s.newSymbol(fmt.Sprintf("%s[%d]", f.Name, i), f.Role, v)
				if err != nil {
					return nil, err
				}
				syms[i] = sym
			}
			f.Syms = syms
			f.Values = nil

		case Plain:
			// Copied verbatim by the clone, nothing to do.
		}
	}

	return out, nil
}

// newSymbol derives the leaf shape from the declared value and requests
// a solver-native handle for it. The shape is fixed here for the
// lifetime of the symbol tree.
func (s *Session) newSymbol(name string, role Role, value *nd.Array) (*Symbol, error) {
	if value == nil {
		return nil, &MissingValueError{Field: name}
	}
	if value.Rank() > 2 {
		return nil, &UnsupportedRankError{Field: name, Rank: value.Rank()}
	}

	shape := solver.ShapeOf(value)

	var h solver.Handle
	switch role {
	case Variable:
		h = s.backend.CreateVariable(shape)
	case Parameter:
		h = s.backend.CreateParameter(shape)
	default:
		return nil, fmt.Errorf("field %s has unsupported storage role %d", name, role)
	}

	return &Symbol{Handle: h, Shape: shape}, nil
}
