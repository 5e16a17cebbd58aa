// Package lazy shares one single-pass sequence between several readers.
package lazy

import "iter"

// Buffer pulls from an upstream sequence on demand and keeps every pulled
// element so independent cursors can replay them. Upstream is consumed at
// most once per element. A Buffer is not safe for concurrent use.
type Buffer[E any] struct {
	next  func() (E, bool)
	stop  func()
	items []E
	done  bool
}

func New[E any](seq iter.Seq[E]) *Buffer[E] {
	next, stop := iter.Pull(seq)
	return &Buffer[E]{next: next, stop: stop}
}

// At returns the element at index i, pulling upstream until it is
// available. The second result is false once upstream is exhausted.
func (b *Buffer[E]) At(i int) (E, bool) {
	for !b.done && len(b.items) <= i {
		v, ok := b.next()
		if !ok {
			b.Close()
			break
		}
		b.items = append(b.items, v)
	}

	if i < len(b.items) {
		return b.items[i], true
	}

	var zero E
	return zero, false
}

// Cursor returns a sequence reading the buffer from the start.
func (b *Buffer[E]) Cursor() iter.Seq[E] {
	return func(yield func(E) bool) {
		for i := 0; ; i++ {
			v, ok := b.At(i)
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Pulled reports how many elements were read from upstream so far.
func (b *Buffer[E]) Pulled() int {
	return len(b.items)
}

// Close releases the upstream sequence. Elements already pulled stay
// readable.
func (b *Buffer[E]) Close() {
	if b.done {
		return
	}
	b.done = true
	b.stop()
}
