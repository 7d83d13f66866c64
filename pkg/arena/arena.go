// Package arena provides a dense, index-stable allocator of node records.
//
// Released slots are threaded onto a free list and handed back out to the
// next caller that allocates, so indices stay stable for a node's whole
// lifetime and storage is reused without moving anything.
package arena

import "github.com/nibblekv/ptrie/internal/debug"

// Index identifies a slot in an Arena. It is stable for the lifetime of the
// node occupying that slot: unrelated allocations and frees never change
// the meaning of an already-issued Index.
type Index int

// NoIndex is the logical "no node" sentinel. It is not the zero Index (0 is
// a valid slot) and is never returned by Alloc.
const NoIndex Index = -1

type slot[T any] struct {
	value    T
	occupied bool
}

// Arena is a dense, index-stable allocator of values of type T.
//
// The zero Arena is empty and ready to use.
type Arena[T any] struct {
	slots []slot[T]
	free  []Index
}

// New returns an empty Arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// WithCapacity returns an empty Arena pre-sized to hold n nodes without
// reallocating its backing slice.
func WithCapacity[T any](n int) *Arena[T] {
	return &Arena[T]{slots: make([]slot[T], 0, n)}
}

// Len returns the number of occupied slots.
func (a *Arena[T]) Len() int {
	return len(a.slots) - len(a.free)
}

// Alloc stores value in a free slot (reusing a previously freed index when
// one is available) and returns its stable Index.
func (a *Arena[T]) Alloc(value T) Index {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx] = slot[T]{value: value, occupied: true}

		return idx
	}

	idx := Index(len(a.slots))
	a.slots = append(a.slots, slot[T]{value: value, occupied: true})

	return idx
}

// Free releases the slot at idx, returning its value, and makes idx eligible
// for reuse by a future Alloc.
func (a *Arena[T]) Free(idx Index) T {
	s := &a.slots[idx]
	debug.Assert(s.occupied, "arena: Free(%d) on an already-freed index", idx)

	value := s.value
	*s = slot[T]{}
	a.free = append(a.free, idx)

	return value
}

// Get returns a pointer to the value stored at idx.
//
// Calling Get with an index that was never allocated, or that has since
// been freed, is undefined behavior from the caller's perspective; debug
// builds assert against it.
func (a *Arena[T]) Get(idx Index) *T {
	debug.Assert(idx >= 0 && int(idx) < len(a.slots) && a.slots[idx].occupied,
		"arena: Get(%d) on an invalid index", idx)

	return &a.slots[idx].value
}

// GetMut is an alias for Get: both return a mutable pointer into the arena.
func (a *Arena[T]) GetMut(idx Index) *T { return a.Get(idx) }

// Shrink releases any backing capacity beyond what is needed to hold the
// currently-occupied slots, compacting the free list but never the slots
// themselves (which would invalidate live indices).
func (a *Arena[T]) Shrink() {
	a.free = append([]Index(nil), a.free...)

	if cap(a.slots) == len(a.slots) {
		return
	}

	shrunk := make([]slot[T], len(a.slots))
	copy(shrunk, a.slots)
	a.slots = shrunk
}
