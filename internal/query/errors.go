package query

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOperator indicates a hierarchy operator with no registered traversal.
	ErrUnknownOperator = errors.New("query: unknown hierarchy operator")

	// ErrUnknownModifier indicates a modifier name with no registered transform.
	ErrUnknownModifier = errors.New("query: unknown modifier")

	// ErrInvalidArgument indicates a modifier argument that is missing, unexpected or malformed.
	ErrInvalidArgument = errors.New("query: invalid modifier argument")
)

func argumentError(name, format string, args ...any) error {
	return fmt.Errorf("%w: :%s %s", ErrInvalidArgument, name, fmt.Sprintf(format, args...))
}
