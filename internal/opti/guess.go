package opti

import (
	"fmt"

	"github.com/rob-mau/hippopt/internal/nd"
	"github.com/rob-mau/hippopt/internal/solver"
)

// injectStructure walks a guess tree in lock-step with the symbol tree,
// validating structure, lengths, and shapes at every boundary before
// forwarding each leaf to the backend. The path argument is a
// diagnostic breadcrumb only.
//
// A failure aborts the walk immediately; leaves already applied stay
// applied.
func (s *Session) injectStructure(guess, symbols Structure, path string) error {
	if guessList, ok := guess.(List); ok {
		symbolList, ok := symbols.(List)
		if !ok {
			return &StructureMismatchError{Path: path, Want: "record", Got: "list"}
		}
		if len(symbolList) != len(guessList) {
			return &LengthMismatchError{Path: path, Want: len(symbolList), Got: len(guessList)}
		}
		for i := range guessList {
			if err := s.injectStructure(guessList[i], symbolList[i], indexPath(path, i)); err != nil {
				return err
			}
		}
		return nil
	}

	guessRecord, ok := guess.(*Record)
	if !ok {
		return fmt.Errorf("unsupported guess type %T at %s", guess, pathOrRoot(path))
	}
	symbolRecord, ok := symbols.(*Record)
	if !ok {
		return &StructureMismatchError{Path: path, Want: "list", Got: "record"}
	}

	return s.injectRecord(guessRecord, symbolRecord, path)
}

func (s *Session) injectRecord(guess, symbols *Record, path string) error {
	for _, gf := range guess.Fields {
		if gf.Kind == Plain || guessFieldEmpty(gf) {
			continue
		}

		leafPath := fieldPath(path, gf.Name)

		sf, ok := symbols.Field(gf.Name)
		if !ok {
			return &UnknownFieldError{Path: leafPath}
		}

		switch sf.Kind {
		case Storage:
			if gf.Kind != Storage {
				return &StructureMismatchError{Path: leafPath, Want: "single value", Got: gf.Kind.String()}
			}
			if err := s.applyLeaf(sf.Role, sf.Sym, gf.Value, leafPath); err != nil {
				return err
			}

		case StorageList:
			if gf.Kind != StorageList {
				return &StructureMismatchError{Path: leafPath, Want: "list", Got: gf.Kind.String()}
			}
			if len(sf.Syms) != len(gf.Values) {
				return &LengthMismatchError{Path: leafPath, Want: len(sf.Syms), Got: len(gf.Values)}
			}
			for i, value := range gf.Values {
				if value == nil {
					return &StructureMismatchError{Path: indexPath(leafPath, i), Want: "numeric array", Got: "nil"}
				}
				if err := s.applyLeaf(sf.Role, sf.Syms[i], value, indexPath(leafPath, i)); err != nil {
					return err
				}
			}

		case Composite, CompositeList:
			if gf.Sub == nil {
				return &StructureMismatchError{Path: leafPath, Want: sf.Kind.String(), Got: gf.Kind.String()}
			}
			if err := s.injectStructure(gf.Sub, sf.Sub, leafPath); err != nil {
				return err
			}

		default:
			return &StructureMismatchError{Path: leafPath, Want: "plain field", Got: gf.Kind.String()}
		}
	}

	return nil
}

// applyLeaf validates one numeric guess against a symbolic leaf and
// dispatches by role: variables get an initial value hint, parameters
// get their fixed value.
func (s *Session) applyLeaf(role Role, sym *Symbol, value *nd.Array, path string) error {
	if value.Rank() > 2 {
		return &UnsupportedRankError{Field: path, Rank: value.Rank()}
	}

	shape := solver.ShapeOf(value)
	if shape != sym.Shape {
		return &ShapeMismatchError{Path: path, Want: sym.Shape, Got: shape}
	}

	switch role {
	case Variable:
		return s.backend.SetInitial(sym.Handle, value)
	case Parameter:
		return s.backend.SetValue(sym.Handle, value)
	}
	return fmt.Errorf("field %s has unsupported storage role %d", path, role)
}

// guessFieldEmpty reports whether a guess field carries no payload and
// should be skipped (a guess is optional per field).
func guessFieldEmpty(f *Field) bool {
	switch f.Kind {
	case Storage:
		return f.Value == nil
	case StorageList:
		return f.Values == nil
	case Composite, CompositeList:
		return f.Sub == nil
	}
	return true
}

func fieldPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func indexPath(base string, i int) string {
	return fmt.Sprintf("%s[%d]", base, i)
}
