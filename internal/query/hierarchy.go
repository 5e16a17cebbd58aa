package query

import (
	"fmt"
	"iter"

	"github.com/jacoelho/treeq/internal/selector"
)

type hierarchyConstructor[T comparable] func(c *compiler[T]) stage[T]

// resolveHierarchy returns the traversal performed by op. None only
// appears on the first segment and matches the input itself.
func resolveHierarchy[T comparable](op rune) (hierarchyConstructor[T], error) {
	switch op {
	case selector.None:
		return func(*compiler[T]) stage[T] {
			return identity[T]
		}, nil
	case selector.Descendant:
		return func(c *compiler[T]) stage[T] {
			return expand(func(node T) iter.Seq2[T, error] {
				return c.provider.Descendants(node, c.strategy)
			})
		}, nil
	case selector.Child:
		return func(c *compiler[T]) stage[T] {
			return expand(c.provider.Children)
		}, nil
	case selector.Adjacent:
		return func(c *compiler[T]) stage[T] {
			return expand(func(node T) iter.Seq2[T, error] {
				return following(c.provider, node, true)
			})
		}, nil
	case selector.Sibling:
		return func(c *compiler[T]) stage[T] {
			return expand(func(node T) iter.Seq2[T, error] {
				return following(c.provider, node, false)
			})
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
}

// following yields the siblings after node, or only the next one.
func following[T comparable](p Provider[T], node T, nextOnly bool) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		found := false
		for sibling, err := range p.Siblings(node) {
			if err != nil {
				yield(sibling, err)
				return
			}
			if !found {
				found = sibling == node
				continue
			}
			if !yield(sibling, nil) || nextOnly {
				return
			}
		}
	}
}
