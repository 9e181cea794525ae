package opti

import (
	"fmt"

	"github.com/rob-mau/hippopt/internal/solver"
)

// Validation failures are raised synchronously at the point of
// detection, aborting the current tree walk. Leaves applied earlier in
// the same walk stay applied; there is no rollback.
//
// Use errors.Is with a zero-value target to match by condition, e.g.
// errors.Is(err, &ShapeMismatchError{}).

// MissingValueError reports a storage leaf with no shape-bearing value
// at generation time.
type MissingValueError struct {
	Field string
}

func (e *MissingValueError) Error() string {
	return "field " + e.Field + " is tagged as storage, but it has no value"
}

func (e *MissingValueError) Is(target error) bool {
	_, ok := target.(*MissingValueError)
	return ok
}

// UnsupportedRankError reports a numeric value of rank greater than 2.
type UnsupportedRankError struct {
	Field string
	Rank  int
}

func (e *UnsupportedRankError) Error() string {
	return fmt.Sprintf("field %s has rank %d, at most 2 is supported", e.Field, e.Rank)
}

func (e *UnsupportedRankError) Is(target error) bool {
	_, ok := target.(*UnsupportedRankError)
	return ok
}

// UnknownFieldError reports a guess field with no counterpart in the
// symbol tree.
type UnknownFieldError struct {
	Path string
}

func (e *UnknownFieldError) Error() string {
	return "the guess has the field " + e.Path + " but it is not present in the symbol tree"
}

func (e *UnknownFieldError) Is(target error) bool {
	_, ok := target.(*UnknownFieldError)
	return ok
}

// StructureMismatchError reports a guess node whose form disagrees with
// the symbol tree (list where a record stands, single value where a
// list stands, and so on).
type StructureMismatchError struct {
	Path string
	Want string // What the symbol tree holds at this position
	Got  string // What the guess supplied
}

func (e *StructureMismatchError) Error() string {
	return fmt.Sprintf("structure mismatch at %s: expected %s, got %s",
		pathOrRoot(e.Path), e.Want, e.Got)
}

func (e *StructureMismatchError) Is(target error) bool {
	_, ok := target.(*StructureMismatchError)
	return ok
}

// LengthMismatchError reports disagreeing list lengths between guess
// and symbol tree.
type LengthMismatchError struct {
	Path string
	Want int
	Got  int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("the guess at %s is a list of the wrong size, expected %d, got %d",
		pathOrRoot(e.Path), e.Want, e.Got)
}

func (e *LengthMismatchError) Is(target error) bool {
	_, ok := target.(*LengthMismatchError)
	return ok
}

// ShapeMismatchError reports a numeric guess whose shape (after column
// promotion) disagrees with the leaf's fixed shape.
type ShapeMismatchError struct {
	Path string
	Want solver.Shape
	Got  solver.Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("the guess for %s has shape %s, the symbolic leaf has shape %s",
		e.Path, e.Got, e.Want)
}

func (e *ShapeMismatchError) Is(target error) bool {
	_, ok := target.(*ShapeMismatchError)
	return ok
}

// SolutionNotAvailableError reports a result or cost request before a
// successful solve.
type SolutionNotAvailableError struct{}

func (e *SolutionNotAvailableError) Error() string {
	return "no solution is available: solve has not completed"
}

func (e *SolutionNotAvailableError) Is(target error) bool {
	_, ok := target.(*SolutionNotAvailableError)
	return ok
}

// ProblemNotRegisteredError reports a problem request before one was
// registered.
type ProblemNotRegisteredError struct{}

func (e *ProblemNotRegisteredError) Error() string {
	return "no problem has been registered"
}

func (e *ProblemNotRegisteredError) Is(target error) bool {
	_, ok := target.(*ProblemNotRegisteredError)
	return ok
}

func pathOrRoot(path string) string {
	if path == "" {
		return "the root"
	}
	return path
}
