package exit

import (
	"fmt"
	"io"
	"os"
)

const (
	CodeMatch   = 0
	CodeNoMatch = 1
	CodeError   = 2
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	if r.Message == "" {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

// Matched reports a query that produced at least one node.
func Matched() *Result {
	return &Result{Output: os.Stdout, ExitCode: CodeMatch}
}

// NoMatch reports a query that ran cleanly but selected nothing.
func NoMatch() *Result {
	return &Result{Output: os.Stdout, ExitCode: CodeNoMatch}
}

// Success creates a successful exit result that outputs to stdout with exit code 0.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: CodeMatch,
		Message:  message,
	}
}

// Error creates an error exit result that outputs to stderr with exit code 2.
func Error(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeError,
		Message:  message,
	}
}

// Errorf creates an error exit result with formatted message.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// FromError maps err to an error result, or to nil when err is nil.
func FromError(err error) *Result {
	if err == nil {
		return nil
	}
	return Errorf("Error: %v\n", err)
}
