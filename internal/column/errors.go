package column

import (
	"fmt"

	"github.com/reoring/ndskema/dtype"
)

// CastError reports a number outside the representable range of its kind.
type CastError struct {
	Value string
	From  string
	To    dtype.Kind
}

func (e *CastError) Error() string {
	return fmt.Sprintf("could not cast %s (%s) into %s", e.Value, e.From, e.To)
}

// ShapeError reports a jagged nested array.
type ShapeError struct {
	Kind     dtype.Kind
	Expected []int
	Total    int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("irregular shape found, cannot decode as %s array: expected shape %v, total elements %d", e.Kind, e.Expected, e.Total)
}

// TypeError reports a token whose structural kind a typed buffer cannot hold.
type TypeError struct {
	Kind dtype.Kind
	Got  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("cannot decode %s as %s", e.Got, e.Kind)
}
