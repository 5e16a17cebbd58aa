// Package option provides the tri-state element carried through query
// evaluation streams.
package option

import "fmt"

// Kind tells what an Option slot holds.
type Kind uint8

const (
	// Empty marks a position where a transform produced nothing.
	Empty Kind = iota
	// Absent marks a position whose element was rejected.
	Absent
	// Present holds a value.
	Present
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Absent:
		return "absent"
	case Present:
		return "present"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Option is one slot of an evaluation stream. Pos is the index of the
// input element the slot descends from.
type Option[T any] struct {
	kind  Kind
	value T
	pos   int
}

// Of returns a present slot.
func Of[T any](value T, pos int) Option[T] {
	return Option[T]{kind: Present, value: value, pos: pos}
}

// NewAbsent returns a rejected slot.
func NewAbsent[T any](pos int) Option[T] {
	return Option[T]{kind: Absent, pos: pos}
}

// NewEmpty returns a slot with nothing in it.
func NewEmpty[T any](pos int) Option[T] {
	return Option[T]{kind: Empty, pos: pos}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.kind == Present
}

func (o Option[T]) Kind() Kind {
	return o.kind
}

func (o Option[T]) Pos() int {
	return o.pos
}

func (o Option[T]) IsPresent() bool {
	return o.kind == Present
}

// Reject turns a present slot into an absent one at the same position.
// Other slots are returned unchanged.
func (o Option[T]) Reject() Option[T] {
	if o.kind != Present {
		return o
	}
	return NewAbsent[T](o.pos)
}

func (o Option[T]) String() string {
	if o.kind == Present {
		return fmt.Sprintf("present(%v)@%d", o.value, o.pos)
	}
	return fmt.Sprintf("%s@%d", o.kind, o.pos)
}
