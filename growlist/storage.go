package growlist

import "go.uber.org/atomic"

// storage is the paired values/hasValue arrays GrowList publishes as a
// single unit. Bundling them into one struct swapped behind one
// atomic.Pointer is the "single wrapper reference" alternative to
// publishing hasValue and values as two separately-swapped arrays: a
// reader that loads the pointer once sees a pair built by the same
// grower, so there is no interleaving where a new values slice pairs
// with a stale hasValue slice.
//
// Elements are boxed behind atomic.Pointer[T] rather than stored as plain
// T so that Append's "write value, then release hasValue" and Set/CAS's
// "release semantics" hold for arbitrary T, not just machine-word handles.
type storage[T any] struct {
	values   []atomic.Pointer[T]
	hasValue []atomic.Bool
}

func newStorage[T any](capacity int) *storage[T] {
	return &storage[T]{
		values:   make([]atomic.Pointer[T], capacity),
		hasValue: make([]atomic.Bool, capacity),
	}
}

func (s *storage[T]) cap() int64 {
	return int64(len(s.values))
}

func (s *storage[T]) load(i int64) T {
	var zero T
	if p := s.values[i].Load(); p != nil {
		return *p
	}
	return zero
}

func (s *storage[T]) store(i int64, v T) {
	s.values[i].Store(&v)
}
