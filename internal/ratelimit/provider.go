package ratelimit

import (
	"context"
	"iter"

	"github.com/jacoelho/treeq/internal/query"
	"github.com/jacoelho/treeq/internal/selector"
	"github.com/jacoelho/treeq/internal/traverse"
)

// Provider wraps another provider. Every traversal request first waits
// on the limiter, and a done context ends any sequence in progress with
// the context error.
type Provider[T any] struct {
	ctx     context.Context
	limiter *Limiter
	next    query.Provider[T]
}

func NewProvider[T any](ctx context.Context, limiter *Limiter, next query.Provider[T]) *Provider[T] {
	return &Provider[T]{ctx: ctx, limiter: limiter, next: next}
}

func (p *Provider[T]) Predicate(typ, name string, attrs []selector.Attribute) (func(T) bool, error) {
	return p.next.Predicate(typ, name, attrs)
}

func (p *Provider[T]) Children(node T) iter.Seq2[T, error] {
	return p.gate(func() iter.Seq2[T, error] { return p.next.Children(node) })
}

func (p *Provider[T]) Descendants(node T, strategy traverse.Strategy) iter.Seq2[T, error] {
	return p.gate(func() iter.Seq2[T, error] { return p.next.Descendants(node, strategy) })
}

func (p *Provider[T]) Ancestors(node T) iter.Seq2[T, error] {
	return p.gate(func() iter.Seq2[T, error] { return p.next.Ancestors(node) })
}

func (p *Provider[T]) Siblings(node T) iter.Seq2[T, error] {
	return p.gate(func() iter.Seq2[T, error] { return p.next.Siblings(node) })
}

func (p *Provider[T]) gate(request func() iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		if err := p.limiter.Wait(p.ctx); err != nil {
			yield(zero, err)
			return
		}

		for node, err := range request() {
			if ctxErr := p.ctx.Err(); ctxErr != nil {
				yield(zero, ctxErr)
				return
			}
			if !yield(node, err) || err != nil {
				return
			}
		}
	}
}
