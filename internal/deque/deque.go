package deque

import (
	"slices"
)

// Deque is a slice backed double ended queue. Used from the back only it
// is a stack; pushed at the back and popped from the front it is a queue.
type Deque[T any] struct {
	items []T
	head  int
}

func New[T any]() *Deque[T] {
	return &Deque[T]{}
}

// NewWithCapacity reduces allocations when approximate size is known.
func NewWithCapacity[T any](capacity int) *Deque[T] {
	return &Deque[T]{
		items: make([]T, 0, capacity),
	}
}

// PushBack adds elements in order with the last element at the back.
func (d *Deque[T]) PushBack(items ...T) {
	d.items = append(d.items, items...)
}

func (d *Deque[T]) PopBack() (T, bool) {
	if d.IsEmpty() {
		var zero T
		return zero, false
	}

	index := len(d.items) - 1
	item := d.items[index]
	var zero T
	d.items[index] = zero
	d.items = d.items[:index]
	d.compact()
	return item, true
}

func (d *Deque[T]) PopFront() (T, bool) {
	if d.IsEmpty() {
		var zero T
		return zero, false
	}

	item := d.items[d.head]
	var zero T
	d.items[d.head] = zero
	d.head++
	d.compact()
	return item, true
}

func (d *Deque[T]) Back() (T, bool) {
	if d.IsEmpty() {
		var zero T
		return zero, false
	}

	return d.items[len(d.items)-1], true
}

func (d *Deque[T]) Front() (T, bool) {
	if d.IsEmpty() {
		var zero T
		return zero, false
	}

	return d.items[d.head], true
}

func (d *Deque[T]) IsEmpty() bool {
	return d.Len() == 0
}

func (d *Deque[T]) Len() int {
	return len(d.items) - d.head
}

// ToSlice orders from front to back.
func (d *Deque[T]) ToSlice() []T {
	return slices.Clone(d.items[d.head:])
}

// compact drops the consumed prefix once it dominates the backing slice.
func (d *Deque[T]) compact() {
	switch {
	case d.head == len(d.items):
		d.items = d.items[:0]
		d.head = 0
	case d.head > 32 && d.head*2 > len(d.items):
		n := copy(d.items, d.items[d.head:])
		clear(d.items[n:])
		d.items = d.items[:n]
		d.head = 0
	}
}
