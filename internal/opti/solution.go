package opti

import (
	"github.com/rob-mau/hippopt/internal/nd"
)

// extractStructure maps the symbol tree to an isomorphic solution tree
// by reading every symbolic leaf back from the solution context. Every
// read is a pure projection; solver state is not touched.
func (s *Session) extractStructure(in Structure) Structure {
	switch v := in.(type) {
	case List:
		out := make(List, len(v))
		for i, el := range v {
			out[i] = s.extractStructure(el)
		}
		return out
	case *Record:
		return s.extractRecord(v)
	}
	return nil
}

func (s *Session) extractRecord(in *Record) *Record {
	out := in.Clone()

	for _, f := range out.Fields {
		switch f.Kind {
		case Storage:
			f.Value = s.solution.Value(f.Sym.Handle)
			f.Sym = nil

		case StorageList:
			values := make([]*nd.Array, len(f.Syms))
			for i, sym := range f.Syms {
				values[i] = s.solution.Value(sym.Handle)
			}
			f.Values = values
			f.Syms = nil

		case Composite, CompositeList:
			f.Sub = s.extractStructure(f.Sub)
		}
	}

	return out
}

// LeafValues flattens the storage leaves of a solution tree into a map
// keyed by breadcrumb path (e.g. "knots[2].position"). Useful for
// exporting results; the tree itself stays the canonical form.
func LeafValues(s Structure) map[string]*nd.Array {
	out := make(map[string]*nd.Array)
	collectLeaves(s, "", out)
	return out
}

func collectLeaves(s Structure, path string, out map[string]*nd.Array) {
	switch v := s.(type) {
	case List:
		for i, el := range v {
			collectLeaves(el, indexPath(path, i), out)
		}
	case *Record:
		for _, f := range v.Fields {
			switch f.Kind {
			case Storage:
				if f.Value != nil {
					out[fieldPath(path, f.Name)] = f.Value
				}
			case StorageList:
				for i, val := range f.Values {
					if val != nil {
						out[indexPath(fieldPath(path, f.Name), i)] = val
					}
				}
			case Composite, CompositeList:
				collectLeaves(f.Sub, fieldPath(path, f.Name), out)
			}
		}
	}
}
