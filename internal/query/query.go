// Package query compiles selectors into lazy evaluators over any tree
// exposed through a Provider.
//
// Evaluation threads a tri-state stream through the stages of each
// selector alternative: every slot is either a present node, an absent
// (rejected) node or an empty slot, and carries the position of the input
// element it descends from. Stages never drop slots, which keeps index
// modifiers such as :eq and :last consistent after filtering.
package query

import (
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/jacoelho/treeq/internal/lazy"
	"github.com/jacoelho/treeq/internal/option"
	"github.com/jacoelho/treeq/internal/selector"
	"github.com/jacoelho/treeq/internal/traverse"
)

// Query is a compiled selector. Node identity (==) is used to drop
// duplicates, so T is usually a pointer. A Query may be applied any
// number of times but a single evaluation is not safe for concurrent use.
type Query[T comparable] struct {
	selectors []selector.Selector
	branches  []transform[T]
}

type settings struct {
	logger *zap.Logger
}

// CompileOption configures Compile.
type CompileOption func(*settings)

// WithLogger sets the logger used to report compilation. Defaults to a
// no-op logger.
func WithLogger(logger *zap.Logger) CompileOption {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type compiler[T comparable] struct {
	provider Provider[T]
	strategy traverse.Strategy
	logger   *zap.Logger
}

// Compile parses text and builds the evaluator for every alternative. All
// grammar, operator and modifier errors surface here, before any traversal.
func Compile[T comparable](text string, strategy traverse.Strategy, provider Provider[T], opts ...CompileOption) (*Query[T], error) {
	selectors, err := selector.Parse(text)
	if err != nil {
		return nil, err
	}
	return CompileSelectors(selectors, strategy, provider, opts...)
}

// CompileSelectors builds a query from already parsed alternatives.
func CompileSelectors[T comparable](selectors []selector.Selector, strategy traverse.Strategy, provider Provider[T], opts ...CompileOption) (*Query[T], error) {
	cfg := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &compiler[T]{provider: provider, strategy: strategy, logger: cfg.logger}

	q := &Query[T]{selectors: selectors}
	for _, sel := range selectors {
		branch, err := c.compile(sel)
		if err != nil {
			return nil, err
		}
		q.branches = append(q.branches, branch)
	}

	c.logger.Debug("compiled selector",
		zap.String("selector", q.String()),
		zap.Int("alternatives", len(q.branches)),
		zap.Stringer("strategy", strategy),
	)

	return q, nil
}

// compile chains, per segment, the hierarchy traversal, the predicate
// filter and the modifiers in declared order.
func (c *compiler[T]) compile(sel selector.Selector) (transform[T], error) {
	var stages transform[T]
	for _, seg := range sel.Segments {
		hierarchy, err := resolveHierarchy[T](seg.Operator)
		if err != nil {
			return nil, err
		}
		stages = append(stages, hierarchy(c))

		test, err := c.provider.Predicate(seg.Type, seg.Name, seg.Attributes)
		if err != nil {
			return nil, fmt.Errorf("segment %q: %w", selector.Selector{Segments: []selector.Segment{seg}}, err)
		}
		stages = append(stages, filter(predicate(test)))

		for _, mod := range seg.Modifiers {
			ctor, err := resolveModifier[T](mod.Name)
			if err != nil {
				return nil, err
			}
			s, err := ctor(c, mod)
			if err != nil {
				return nil, err
			}
			stages = append(stages, s)
		}
	}
	return stages, nil
}

// Apply evaluates the query against input lazily. Results come in input
// order; within one input element, alternatives appear in declaration
// order. A node is reported once even when several alternatives match it.
// A provider error is yielded as the final element.
func (q *Query[T]) Apply(input iter.Seq[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		ev := &evaluation{}
		for value := range present(ev, q.evaluate(ev, options(input))) {
			if !yield(value, nil) {
				return
			}
		}
		if ev.err != nil {
			var zero T
			yield(zero, ev.err)
		}
	}
}

// Accepts reports whether node itself matches the query.
func (q *Query[T]) Accepts(node T) (bool, error) {
	for _, err := range q.Apply(single(node)) {
		return err == nil, err
	}
	return false, nil
}

// Selectors returns the parsed alternatives.
func (q *Query[T]) Selectors() []selector.Selector {
	return q.selectors
}

func (q *Query[T]) String() string {
	return selector.Format(q.selectors)
}

func (q *Query[T]) evaluate(ev *evaluation, in stream[T]) stream[T] {
	return func(yield func(option.Option[T]) bool) {
		buf := lazy.New(in)
		defer buf.Close()

		branches := make([]stream[T], len(q.branches))
		for i, branch := range q.branches {
			branches[i] = branch.apply(ev, stream[T](buf.Cursor()))
		}

		for opt := range merge(ev, buf, branches) {
			if !yield(opt) {
				return
			}
		}
	}
}
