package query

import "iter"

// present unwraps the present elements of a stream. It stops once the
// evaluation has failed.
func present[T any](ev *evaluation, in stream[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for opt := range in {
			if ev.err != nil {
				return
			}
			if value, ok := opt.Get(); ok && !yield(value) {
				return
			}
		}
	}
}
