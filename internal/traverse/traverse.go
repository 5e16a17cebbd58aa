// Package traverse walks trees described by accessor functions.
package traverse

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/jacoelho/treeq/internal/deque"
)

// ErrUnknownStrategy is returned by ParseStrategy for unrecognised names.
var ErrUnknownStrategy = errors.New("unknown search strategy")

// Strategy selects the order in which descendants are visited.
type Strategy int

const (
	DepthFirst Strategy = iota
	BreadthFirst
)

func (s Strategy) String() string {
	switch s {
	case DepthFirst:
		return "depth-first"
	case BreadthFirst:
		return "breadth-first"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy accepts "depth-first"/"dfs" and "breadth-first"/"bfs".
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "depth-first", "dfs":
		return DepthFirst, nil
	case "breadth-first", "bfs":
		return BreadthFirst, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Descendants yields every node below root, excluding root itself.
// Depth-first order is pre-order; breadth-first order is level by level.
// Siblings keep the order children returns them in.
func Descendants[T any](root T, children func(T) iter.Seq2[T, error], strategy Strategy) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		pending := deque.New[T]()
		pending.PushBack(root)

		for skip := true; !pending.IsEmpty(); skip = false {
			var node T
			if strategy == BreadthFirst {
				node, _ = pending.PopFront()
			} else {
				node, _ = pending.PopBack()
			}

			if !skip && !yield(node, nil) {
				return
			}

			kids, err := Collect(children(node))
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}

			if strategy != BreadthFirst {
				slices.Reverse(kids)
			}
			pending.PushBack(kids...)
		}
	}
}

// Ancestors yields the parents of node, nearest first.
func Ancestors[T any](node T, parent func(T) (T, bool)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			p, ok := parent(node)
			if !ok || !yield(p, nil) {
				return
			}
			node = p
		}
	}
}

// Siblings yields the children of node's parent, node included. A root has
// no siblings.
func Siblings[T any](node T, parent func(T) (T, bool), children func(T) iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		p, ok := parent(node)
		if !ok {
			return
		}
		for sibling, err := range children(p) {
			if !yield(sibling, err) || err != nil {
				return
			}
		}
	}
}

// Slice adapts a slice to an error-carrying sequence.
func Slice[T any](items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Collect drains seq, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
	return out, nil
}
