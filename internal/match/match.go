// Package match builds node predicates from segment criteria. Tree
// providers describe their nodes with an Accessor and get type, name and
// attribute matching for free.
package match

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/jacoelho/treeq/internal/selector"
)

// ErrUnsupportedOperator is returned for attribute operators a provider
// cannot evaluate.
var ErrUnsupportedOperator = errors.New("unsupported attribute operator")

// ErrInvalidKey is returned when a provider rejects an attribute key.
var ErrInvalidKey = errors.New("invalid attribute key")

const wordMatchTimeout = 100 * time.Millisecond

// Accessor exposes the parts of a node a predicate can test.
type Accessor[T any] struct {
	Type func(T) string
	Name func(T) string
	// Lookup resolves an attribute key once and returns the getter used
	// for every node.
	Lookup func(key string) (func(T) (string, bool), error)
}

// Predicate returns a test that holds when a node has the given type (any
// type for "" and "*"), the given name (any for "") and satisfies every
// attribute clause.
func Predicate[T any](acc Accessor[T], typ, name string, attrs []selector.Attribute) (func(T) bool, error) {
	var tests []func(T) bool

	if typ != "" && typ != "*" {
		tests = append(tests, func(node T) bool { return acc.Type(node) == typ })
	}
	if name != "" {
		tests = append(tests, func(node T) bool { return acc.Name(node) == name })
	}

	for _, attr := range attrs {
		get, err := acc.Lookup(attr.Key)
		if err != nil {
			return nil, err
		}
		cmp, err := Operator(attr.Operator, attr.Value)
		if err != nil {
			return nil, err
		}
		tests = append(tests, func(node T) bool {
			value, ok := get(node)
			return cmp(value, ok)
		})
	}

	return func(node T) bool {
		for _, test := range tests {
			if !test(node) {
				return false
			}
		}
		return true
	}, nil
}

// Operator compiles an attribute operator. The returned function receives
// the attribute value and whether the node has the attribute at all.
func Operator(op, want string) (func(value string, ok bool) bool, error) {
	switch op {
	case selector.OpExists:
		return func(_ string, ok bool) bool { return ok }, nil
	case selector.OpEquals:
		return func(v string, ok bool) bool { return ok && v == want }, nil
	case selector.OpNotEquals:
		return func(v string, ok bool) bool { return !ok || v != want }, nil
	case selector.OpPrefix:
		return func(v string, ok bool) bool { return ok && strings.HasPrefix(v, want) }, nil
	case selector.OpSuffix:
		return func(v string, ok bool) bool { return ok && strings.HasSuffix(v, want) }, nil
	case selector.OpContains:
		return func(v string, ok bool) bool { return ok && strings.Contains(v, want) }, nil
	case selector.OpContainsWord:
		return containsWord(want)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, op)
}

// containsWord matches values holding want as a whitespace separated word.
func containsWord(want string) (func(string, bool) bool, error) {
	if want == "" || strings.ContainsFunc(want, isSpace) {
		return func(string, bool) bool { return false }, nil
	}

	re, err := regexp2.Compile(`(?<!\S)`+regexp2.Escape(want)+`(?!\S)`, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: ~=%q: %v", ErrUnsupportedOperator, want, err)
	}
	re.MatchTimeout = wordMatchTimeout

	return func(v string, ok bool) bool {
		if !ok {
			return false
		}
		// a value that exceeds wordMatchTimeout counts as no match
		matched, err := re.MatchString(v)
		return err == nil && matched
	}, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}
