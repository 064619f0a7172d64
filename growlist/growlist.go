// Package growlist implements a grow-only, lock-free indexed sequence
// tuned for concurrent append under heavy contention. Indices are claimed
// by an atomic increment before the backing array is guaranteed to hold
// them; growth happens underneath in-flight appenders via a CAS-guarded
// doubling of the backing storage, following the same claim-then-publish
// shape as a lock-free ring buffer, generalized to an unbounded (up to
// math.MaxInt32) sequence instead of a fixed-capacity ring.
//
// There is no removal. Overwrite of an already-appended slot is allowed
// through Set and CompareAndSwap; nothing else mutates a GrowList.
package growlist

import (
	"math"

	"go.uber.org/atomic"

	"github.com/gsingh-ds/lockfree/internal/backoff"
	"github.com/gsingh-ds/lockfree/internal/cas"
)

const (
	defaultInitialCapacity = 16
	maxCapacity            = math.MaxInt32
)

// GrowList is a grow-only indexed sequence safe for concurrent use by
// any number of appenders and readers. The zero value is not usable; use
// New.
type GrowList[T comparable] struct {
	store atomic.Pointer[storage[T]]
	_     [40]byte // avoid false sharing with the counters below

	theoreticalCapacity atomic.Int64
	_                   [40]byte

	nextIndex atomic.Int64
	_         [40]byte

	fullyAddedCount atomic.Int64
}

// New constructs a GrowList with the given initial capacity. A
// non-positive initialCapacity falls back to a default of 16, the same
// default node_based.go's own ring buffer constructor uses.
func New[T comparable](initialCapacity int) *GrowList[T] {
	if initialCapacity <= 0 {
		initialCapacity = defaultInitialCapacity
	}
	g := &GrowList[T]{}
	g.store.Store(newStorage[T](initialCapacity))
	g.theoreticalCapacity.Store(int64(initialCapacity))
	return g
}

// Append claims the next index, ensures the backing storage can hold it
// (growing if necessary), publishes the value, and opportunistically
// advances the fully-added prefix. It fails only with
// ErrCapacityExhausted, when growth cannot proceed because the list has
// already reached math.MaxInt32 elements.
func (g *GrowList[T]) Append(item T) (int, error) {
	i := g.nextIndex.Add(1) - 1

	if err := g.ensureCapacity(i); err != nil {
		return 0, err
	}

	st := g.store.Load()
	st.store(i, item)
	st.hasValue[i].Store(true)

	g.advanceFullyAdded(i)

	return int(i), nil
}

// MustAppend is Append without the error return, for callers that have
// already established capacity cannot be exhausted (e.g. tests and the
// benchmark harness driving bounded workloads).
func (g *GrowList[T]) MustAppend(item T) int {
	i, err := g.Append(item)
	if err != nil {
		panic(err)
	}
	return i
}

// ensureCapacity implements the growth protocol: it blocks (via back-off,
// never a hard lock) until the backing storage is large enough to hold
// index i, growing it itself if it is the one responsible.
func (g *GrowList[T]) ensureCapacity(i int64) error {
	for {
		theoretical := g.theoreticalCapacity.Load()

		if i < theoretical {
			// Another grower is, or was, responsible for this range.
			bo := backoff.New()
			for g.store.Load().cap() <= i {
				bo.Wait()
			}
			return nil
		}

		// i >= theoretical: no grower has claimed this range yet. Wait
		// for any growth already in flight to finish publishing before
		// attempting to start a new one.
		bo := backoff.New()
		for g.store.Load().cap() < theoretical {
			bo.Wait()
		}

		if theoretical >= maxCapacity {
			return ErrCapacityExhausted
		}

		grown := theoretical * 2
		if grown > maxCapacity || grown <= 0 {
			grown = maxCapacity
		}

		won := false
		cas.RetryInt64(&g.theoreticalCapacity, func(cur int64) (int64, bool) {
			won = cur == theoretical
			if !won {
				return cur, false // stale read; someone else already grew
			}
			return grown, true
		})
		if !won {
			continue // another appender won the race to grow; retry
		}

		g.grow(theoretical, grown)
		return nil
	}
}

// grow allocates new storage of size newCap, copies every slot from the
// current storage (spinning per slot until the source has published it,
// so growth never races ahead of an in-flight Append), and publishes the
// new storage as a single atomic swap.
func (g *GrowList[T]) grow(oldCap, newCap int64) {
	old := g.store.Load()
	next := newStorage[T](int(newCap))

	for j := int64(0); j < oldCap; j++ {
		if !old.hasValue[j].Load() {
			bo := backoff.New()
			for !old.hasValue[j].Load() {
				bo.Wait()
			}
		}
		next.store(j, old.load(j))
		next.hasValue[j].Store(true)
	}

	g.store.Store(next)
}

// advanceFullyAdded extends the fully-added prefix as far as consecutive
// populated slots allow, starting from the slot this caller just wrote.
// It is a helping pattern: a fast appender can close the gap left by a
// slower one that is still between its index claim and its publish.
func (g *GrowList[T]) advanceFullyAdded(i int64) {
	expect := i
	for {
		if !g.fullyAddedCount.CompareAndSwap(expect, expect+1) {
			return
		}
		expect++

		st := g.store.Load()
		if expect >= g.nextIndex.Load() || expect >= st.cap() || !st.hasValue[expect].Load() {
			return
		}
	}
}

// Count returns the number of elements currently visible through Get,
// Contains, IndexOf, and Iterate.
func (g *GrowList[T]) Count() int {
	return int(g.fullyAddedCount.Load())
}

// Capacity returns the size of the currently published backing storage.
// It may be larger than Count and changes only upward.
func (g *GrowList[T]) Capacity() int {
	return int(g.store.Load().cap())
}

// Get returns the value at index i. i must be within [0, Count()).
func (g *GrowList[T]) Get(i int) (T, error) {
	var zero T
	if i < 0 || int64(i) >= g.fullyAddedCount.Load() {
		return zero, ErrOutOfBounds
	}
	return g.store.Load().load(int64(i)), nil
}

// Set unconditionally overwrites the value at index i. Overwrite is only
// permitted within the fully-added prefix; i must be within
// [0, Count()).
func (g *GrowList[T]) Set(i int, v T) error {
	if i < 0 || int64(i) >= g.fullyAddedCount.Load() {
		return ErrOutOfBounds
	}
	g.store.Load().store(int64(i), v)
	return nil
}

// CompareAndSwap atomically replaces the value at index i with newVal if
// and only if it currently equals expected, and returns the value that
// was there prior to the attempt (which equals expected exactly when the
// swap took effect).
func (g *GrowList[T]) CompareAndSwap(i int, expected, newVal T) (T, error) {
	var zero T
	if i < 0 || int64(i) >= g.fullyAddedCount.Load() {
		return zero, ErrOutOfBounds
	}

	st := g.store.Load()
	slot := &st.values[i]

	var prev *T
	cas.RetryPointer(slot, func(cur *T) (*T, bool) {
		prev = cur
		var curVal T
		if cur != nil {
			curVal = *cur
		}
		if curVal != expected {
			return nil, false
		}
		nv := newVal
		return &nv, true
	})

	if prev == nil {
		return zero, nil
	}
	return *prev, nil
}

// Contains reports whether v is present anywhere in the fully-added
// prefix, as of a snapshot taken at the start of the call.
func (g *GrowList[T]) Contains(v T) bool {
	return g.IndexOf(v) >= 0
}

// IndexOf returns the first index holding v within a snapshot of the
// fully-added prefix taken at the start of the call, or -1 if absent.
func (g *GrowList[T]) IndexOf(v T) int {
	count := g.fullyAddedCount.Load()
	st := g.store.Load()
	for i := int64(0); i < count; i++ {
		if st.load(i) == v {
			return int(i)
		}
	}
	return -1
}

// CopyTo copies as much of the fully-added prefix as fits starting at
// buf[offset], and returns the number of elements copied.
func (g *GrowList[T]) CopyTo(buf []T, offset int) int {
	count := g.fullyAddedCount.Load()
	st := g.store.Load()
	n := 0
	for i := int64(0); i < count && offset+n < len(buf); i++ {
		buf[offset+n] = st.load(i)
		n++
	}
	return n
}
