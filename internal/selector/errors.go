package selector

import (
	"errors"
	"fmt"
)

// ErrSyntax indicates selector text that does not follow the grammar.
var ErrSyntax = errors.New("selector: syntax error")

// ParseError reports where parsing stopped and why.
type ParseError struct {
	Input  string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s at offset %d in %q", ErrSyntax, e.Reason, e.Offset, e.Input)
}

func (e *ParseError) Unwrap() error {
	return ErrSyntax
}
