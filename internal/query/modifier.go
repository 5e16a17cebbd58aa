package query

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/jacoelho/treeq/internal/selector"
)

type modifierConstructor[T comparable] func(c *compiler[T], mod selector.Modifier) (stage[T], error)

// resolveModifier returns the transform registered for name. Names are
// case-insensitive.
func resolveModifier[T comparable](name string) (modifierConstructor[T], error) {
	switch strings.ToLower(name) {
	case "eq":
		return indexModifier[T](func(n int) func(int) bool {
			return func(i int) bool { return i == n }
		}), nil
	case "gt":
		return indexModifier[T](func(n int) func(int) bool {
			return func(i int) bool { return i > n }
		}), nil
	case "lt":
		return indexModifier[T](func(n int) func(int) bool {
			return func(i int) bool { return i < n }
		}), nil
	case "first":
		return noArgument(func(*compiler[T]) stage[T] {
			return indexed[T](func(i int) bool { return i == 0 })
		}), nil
	case "last":
		return noArgument(func(*compiler[T]) stage[T] {
			return lastOnly[T]
		}), nil
	case "even":
		return noArgument(func(*compiler[T]) stage[T] {
			return indexed[T](func(i int) bool { return i%2 == 0 })
		}), nil
	case "odd":
		return noArgument(func(*compiler[T]) stage[T] {
			return indexed[T](func(i int) bool { return i%2 == 1 })
		}), nil
	case "parent":
		return noArgument(func(c *compiler[T]) stage[T] {
			return expand(func(node T) iter.Seq2[T, error] {
				return firstOf(c.provider.Ancestors(node))
			})
		}), nil
	case "not":
		return notModifier[T], nil
	case "has":
		return hasModifier[T], nil
	case "closest":
		return closestModifier[T], nil
	case "parents":
		return func(c *compiler[T], mod selector.Modifier) (stage[T], error) {
			return c.expandFiltered(mod, c.provider.Ancestors)
		}, nil
	case "siblings":
		return func(c *compiler[T], mod selector.Modifier) (stage[T], error) {
			return c.expandFiltered(mod, func(node T) iter.Seq2[T, error] {
				return others(c.provider.Siblings(node), node)
			})
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModifier, name)
}

func indexModifier[T comparable](keep func(n int) func(int) bool) modifierConstructor[T] {
	return func(_ *compiler[T], mod selector.Modifier) (stage[T], error) {
		if !mod.HasArgument {
			return nil, argumentError(mod.Name, "requires an index")
		}
		n, err := strconv.Atoi(strings.TrimSpace(mod.Argument))
		if err != nil || n < 0 {
			return nil, argumentError(mod.Name, "index %q is not a non-negative integer", mod.Argument)
		}
		return indexed[T](keep(n)), nil
	}
}

func noArgument[T comparable](build func(*compiler[T]) stage[T]) modifierConstructor[T] {
	return func(c *compiler[T], mod selector.Modifier) (stage[T], error) {
		if mod.HasArgument && strings.TrimSpace(mod.Argument) != "" {
			return nil, argumentError(mod.Name, "takes no argument, got %q", mod.Argument)
		}
		return build(c), nil
	}
}

func notModifier[T comparable](c *compiler[T], mod selector.Modifier) (stage[T], error) {
	sub, err := c.subquery(mod, nil)
	if err != nil {
		return nil, err
	}
	return sieve(sub, false), nil
}

// hasModifier keeps elements with at least one descendant matching the
// argument. An argument starting with a combinator is relative to the
// element.
func hasModifier[T comparable](c *compiler[T], mod selector.Modifier) (stage[T], error) {
	sub, err := c.subquery(mod, func(selectors []selector.Selector) {
		for _, sel := range selectors {
			if sel.Segments[0].Operator == selector.None {
				sel.Segments[0].Operator = selector.Descendant
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return filter(func(node T) (bool, error) {
		for _, err := range sub.Apply(single(node)) {
			return err == nil, err
		}
		return false, nil
	}), nil
}

func closestModifier[T comparable](c *compiler[T], mod selector.Modifier) (stage[T], error) {
	sub, err := c.subquery(mod, nil)
	if err != nil {
		return nil, err
	}
	return expand(func(node T) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			candidates := func(yield func(T, error) bool) {
				if !yield(node, nil) {
					return
				}
				for ancestor, err := range c.provider.Ancestors(node) {
					if !yield(ancestor, err) || err != nil {
						return
					}
				}
			}
			for candidate, err := range candidates {
				if err != nil {
					yield(candidate, err)
					return
				}
				accepted, err := sub.Accepts(candidate)
				if err != nil || accepted {
					yield(candidate, err)
					return
				}
			}
		}
	}), nil
}

// expandFiltered expands elements with fn and, when the modifier has a
// non-empty argument, keeps only the results the argument selects from
// the expanded stream.
func (c *compiler[T]) expandFiltered(mod selector.Modifier, fn func(T) iter.Seq2[T, error]) (stage[T], error) {
	expansion := expand(fn)
	if strings.TrimSpace(mod.Argument) == "" {
		return expansion, nil
	}

	sub, err := c.subquery(mod, nil)
	if err != nil {
		return nil, err
	}
	keep := sieve(sub, true)

	return func(ev *evaluation, in stream[T]) stream[T] {
		return keep(ev, expansion(ev, in))
	}, nil
}

// subquery compiles a modifier argument with the settings of the
// enclosing query. rewrite, when set, may adjust the parsed selectors.
func (c *compiler[T]) subquery(mod selector.Modifier, rewrite func([]selector.Selector)) (*Query[T], error) {
	if !mod.HasArgument {
		return nil, argumentError(mod.Name, "requires a selector")
	}

	selectors, err := selector.Parse(mod.Argument)
	if err != nil {
		return nil, fmt.Errorf("%w: :%s(%s): %w", ErrInvalidArgument, mod.Name, mod.Argument, err)
	}
	if rewrite != nil {
		rewrite(selectors)
	}

	sub, err := CompileSelectors(selectors, c.strategy, c.provider, WithLogger(c.logger))
	if err != nil {
		return nil, fmt.Errorf("%w: :%s(%s): %w", ErrInvalidArgument, mod.Name, mod.Argument, err)
	}
	return sub, nil
}

func firstOf[T any](seq iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range seq {
			yield(v, err)
			return
		}
	}
}

func others[T comparable](seq iter.Seq2[T, error], self T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range seq {
			if err == nil && v == self {
				continue
			}
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

func single[T any](v T) iter.Seq[T] {
	return func(yield func(T) bool) {
		yield(v)
	}
}
