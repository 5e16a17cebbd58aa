package query

import (
	"iter"

	"github.com/jacoelho/treeq/internal/lazy"
	"github.com/jacoelho/treeq/internal/option"
)

// cursor peeks one slot ahead in a branch stream.
type cursor[T any] struct {
	next func() (option.Option[T], bool)
	head option.Option[T]
	full bool
	done bool
}

func (c *cursor[T]) peek() (option.Option[T], bool) {
	if !c.full && !c.done {
		c.head, c.full = c.next()
		c.done = !c.full
	}
	return c.head, c.full
}

func (c *cursor[T]) advance() {
	c.full = false
}

// merge combines the branch streams of a selector list. Input positions
// are visited in order; for each one, branch i is drained of that
// position's slots before branch i+1 is pulled. A node already emitted is
// not emitted again. A position left without a present slot gets a single
// placeholder, absent when any branch rejected a node there.
func merge[T comparable](ev *evaluation, buf *lazy.Buffer[option.Option[T]], branches []stream[T]) stream[T] {
	return func(yield func(option.Option[T]) bool) {
		cursors := make([]*cursor[T], len(branches))
		for i, branch := range branches {
			next, stop := iter.Pull(branch)
			defer stop()
			cursors[i] = &cursor[T]{next: next}
		}

		seen := make(map[T]struct{})
		for i := 0; ev.err == nil; i++ {
			in, ok := buf.At(i)
			if !ok {
				return
			}
			pos := in.Pos()

			emitted, rejected := false, false
			for _, c := range cursors {
				for {
					opt, ok := c.peek()
					if !ok || opt.Pos() > pos {
						break
					}
					c.advance()

					switch opt.Kind() {
					case option.Present:
						value, _ := opt.Get()
						if _, dup := seen[value]; dup {
							continue
						}
						seen[value] = struct{}{}
						emitted = true
						if !yield(opt) {
							return
						}
					case option.Absent:
						rejected = true
					}
				}
				if ev.err != nil {
					return
				}
			}

			if emitted {
				continue
			}
			placeholder := option.NewEmpty[T](pos)
			if rejected {
				placeholder = option.NewAbsent[T](pos)
			}
			if !yield(placeholder) {
				return
			}
		}
	}
}
