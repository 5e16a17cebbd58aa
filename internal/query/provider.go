package query

import (
	"iter"

	"github.com/jacoelho/treeq/internal/selector"
	"github.com/jacoelho/treeq/internal/traverse"
)

// Provider gives the engine access to a concrete tree. Sequences must be
// finite and in document order; an error ends the sequence.
type Provider[T any] interface {
	// Predicate builds the test for a segment's type, name and attribute
	// clauses. Empty type and name place no constraint.
	Predicate(typ, name string, attrs []selector.Attribute) (func(T) bool, error)
	Children(node T) iter.Seq2[T, error]
	// Descendants excludes node itself.
	Descendants(node T, strategy traverse.Strategy) iter.Seq2[T, error]
	// Ancestors yields the nearest parent first.
	Ancestors(node T) iter.Seq2[T, error]
	// Siblings yields all children of node's parent, node included.
	Siblings(node T) iter.Seq2[T, error]
}
