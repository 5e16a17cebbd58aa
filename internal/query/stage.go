package query

import (
	"iter"

	"github.com/jacoelho/treeq/internal/lazy"
	"github.com/jacoelho/treeq/internal/option"
)

type stream[T any] = iter.Seq[option.Option[T]]

// evaluation is the state shared by all stages of one Apply call.
type evaluation struct {
	err error
}

// fail records the first provider error. Stages stop producing after
// calling it.
func (ev *evaluation) fail(err error) {
	if ev.err == nil {
		ev.err = err
	}
}

// stage is one lazy transform of a tri-state stream. Every input slot
// yields at least one output slot at the same position.
type stage[T any] func(ev *evaluation, in stream[T]) stream[T]

// transform is the composition of the stages of one selector alternative.
type transform[T any] []stage[T]

func (t transform[T]) apply(ev *evaluation, in stream[T]) stream[T] {
	for _, s := range t {
		in = s(ev, in)
	}
	return in
}

func identity[T any](_ *evaluation, in stream[T]) stream[T] {
	return in
}

// expand replaces every present element with the nodes fn yields for it.
// An element expanding to nothing leaves an empty slot.
func expand[T any](fn func(T) iter.Seq2[T, error]) stage[T] {
	return func(ev *evaluation, in stream[T]) stream[T] {
		return func(yield func(option.Option[T]) bool) {
			for opt := range in {
				value, ok := opt.Get()
				if !ok {
					if !yield(opt) {
						return
					}
					continue
				}

				produced := false
				for node, err := range fn(value) {
					if err != nil {
						ev.fail(err)
						return
					}
					produced = true
					if !yield(option.Of(node, opt.Pos())) {
						return
					}
				}

				if !produced && !yield(option.NewEmpty[T](opt.Pos())) {
					return
				}
			}
		}
	}
}

// filter rejects present elements failing keep.
func filter[T any](keep func(T) (bool, error)) stage[T] {
	return func(ev *evaluation, in stream[T]) stream[T] {
		return func(yield func(option.Option[T]) bool) {
			for opt := range in {
				if value, ok := opt.Get(); ok {
					kept, err := keep(value)
					if err != nil {
						ev.fail(err)
						return
					}
					if !kept {
						opt = opt.Reject()
					}
				}
				if !yield(opt) {
					return
				}
			}
		}
	}
}

// predicate adapts an infallible test to filter.
func predicate[T any](test func(T) bool) func(T) (bool, error) {
	return func(v T) (bool, error) {
		return test(v), nil
	}
}

// indexed rejects present elements whose index among present elements
// fails keep. Counting covers the whole stream.
func indexed[T any](keep func(int) bool) stage[T] {
	return func(_ *evaluation, in stream[T]) stream[T] {
		return func(yield func(option.Option[T]) bool) {
			index := 0
			for opt := range in {
				if opt.IsPresent() {
					if !keep(index) {
						opt = opt.Reject()
					}
					index++
				}
				if !yield(opt) {
					return
				}
			}
		}
	}
}

// lastOnly keeps the final present element. Slots following a present
// element are held back until the next present element or the end of the
// stream decides its fate.
func lastOnly[T any](_ *evaluation, in stream[T]) stream[T] {
	return func(yield func(option.Option[T]) bool) {
		var held []option.Option[T]
		for opt := range in {
			if opt.IsPresent() && len(held) > 0 {
				held[0] = held[0].Reject()
				for _, h := range held {
					if !yield(h) {
						return
					}
				}
				held = held[:0]
			}

			if opt.IsPresent() || len(held) > 0 {
				held = append(held, opt)
				continue
			}
			if !yield(opt) {
				return
			}
		}

		for _, h := range held {
			if !yield(h) {
				return
			}
		}
	}
}

// options wraps input elements as present slots numbered by position.
func options[T any](input iter.Seq[T]) stream[T] {
	return func(yield func(option.Option[T]) bool) {
		pos := 0
		for value := range input {
			if !yield(option.Of(value, pos)) {
				return
			}
			pos++
		}
	}
}

// sieve runs sub over the present elements of the stream and keeps the
// elements it produces, or with keep false rejects them. Positional
// modifiers inside sub therefore count across the whole stream. An
// element is decided once sub has moved past its index, so nodes sub
// yields only at later positions do not affect earlier elements.
func sieve[T comparable](sub *Query[T], keep bool) stage[T] {
	return func(ev *evaluation, in stream[T]) stream[T] {
		return func(yield func(option.Option[T]) bool) {
			buf := lazy.New(in)
			defer buf.Close()

			values := func(yield func(T) bool) {
				for opt := range buf.Cursor() {
					if v, ok := opt.Get(); ok && !yield(v) {
						return
					}
				}
			}

			subEv := &evaluation{}
			next, stop := iter.Pull(sub.evaluate(subEv, options(values)))
			defer stop()

			produced := make(map[T]struct{})
			reached, exhausted := -1, false
			index := 0
			for opt := range buf.Cursor() {
				value, ok := opt.Get()
				if !ok {
					if !yield(opt) {
						return
					}
					continue
				}

				for !exhausted && reached <= index {
					res, more := next()
					if !more {
						exhausted = true
						break
					}
					if v, present := res.Get(); present {
						produced[v] = struct{}{}
					}
					reached = res.Pos()
				}
				if subEv.err != nil {
					ev.fail(subEv.err)
					return
				}

				if _, found := produced[value]; found != keep {
					opt = opt.Reject()
				}
				index++

				if !yield(opt) {
					return
				}
			}
		}
	}
}
