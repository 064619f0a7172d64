// Package bufferedqueue implements a multi-producer/multi-consumer
// lock-free FIFO queue optimized for high-contention enqueue. Under light
// contention it behaves like a textbook Michael-Scott queue: enqueuers
// race a single CAS on the tail's next pointer. Under heavy contention
// that single atomic becomes the bottleneck, so losers of the fast-path
// race instead link onto a side chain rooted at altTail; exactly one of
// them (the "root") is responsible for splicing that side chain into the
// main chain once it can, converting N-way contention on one hot CAS into
// a distributed chain build-up plus one splice.
package bufferedqueue

import (
	"iter"

	"go.uber.org/atomic"

	"github.com/gsingh-ds/lockfree/internal/backoff"
)

type node[T any] struct {
	value    T
	next     atomic.Pointer[node[T]]
	hasValue atomic.Bool
}

// BufferedQueue is a FIFO queue safe for concurrent use by any number of
// producers and consumers. The zero value is not usable; use New.
type BufferedQueue[T any] struct {
	head atomic.Pointer[node[T]]
	_    [40]byte

	tail atomic.Pointer[node[T]]
	_    [40]byte

	altTail atomic.Pointer[node[T]]
}

// New constructs an empty BufferedQueue, seeded with a single sentinel
// node that is simultaneously head and tail.
func New[T any]() *BufferedQueue[T] {
	sentinel := &node[T]{}
	q := &BufferedQueue[T]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Enqueue adds item to the tail of the queue. It never blocks
// indefinitely: every retry either installs a next pointer somewhere in
// the chain or observes another producer's progress toward doing so.
func (q *BufferedQueue[T]) Enqueue(item T) {
	n := &node[T]{value: item}
	n.hasValue.Store(true)

	bo := backoff.New()
	for {
		tail := q.tail.Load()
		if tail.next.CompareAndSwap(nil, n) {
			// Plain publish is sufficient here: an enqueuer that reads a
			// stale tail simply falls through to the buffered path and
			// recovers via the CAS-loops below.
			q.tail.Store(n)
			return
		}

		if q.altTail.CompareAndSwap(nil, n) {
			q.spliceRoot(n)
			return
		}

		a := q.altTail.Load()
		if a == nil {
			// The prior root just cleared altTail between our failed CAS
			// above and this load; retry from the top.
			bo.Wait()
			continue
		}

		if !a.next.CompareAndSwap(nil, n) {
			bo.Wait()
			continue
		}

		if q.altTail.CompareAndSwap(a, n) {
			return
		}

		// Advancing altTail lost to the root clearing it concurrently: a
		// is either already the new tail or about to become it.
		q.recoverTail(a, n)
		return
	}
}

// spliceRoot is run by the enqueuer that won the race to become the side
// chain's root. It links root into the main chain, then hands off
// whatever the side chain grew to in the meantime as the new tail.
func (q *BufferedQueue[T]) spliceRoot(root *node[T]) {
	bo := backoff.New()
	for !q.tail.Load().next.CompareAndSwap(nil, root) {
		bo.Wait()
	}

	furthest := q.altTail.Swap(nil)
	if furthest == nil {
		furthest = root
	}
	q.tail.Store(furthest)
}

// recoverTail advances tail from "from" to "to" when a non-root enqueuer
// loses the race to advance altTail because the root just cleared it.
func (q *BufferedQueue[T]) recoverTail(from, to *node[T]) {
	bo := backoff.New()
	for {
		if q.tail.Load() == to {
			return
		}
		if q.tail.CompareAndSwap(from, to) {
			return
		}
		bo.Wait()
	}
}

// TryDequeue removes and returns the value at the head of the queue. It
// never blocks and never fails outright: the bool result reports whether
// a value was taken.
func (q *BufferedQueue[T]) TryDequeue() (T, bool) {
	for {
		h := q.head.Load()

		var value T
		taken := h.hasValue.CompareAndSwap(true, false)
		if taken {
			value = h.value
		}

		next := h.next.Load()
		if next != nil {
			// Opportunistic advance: only one racing dequeuer wins, the
			// rest simply re-read head next iteration.
			q.head.CompareAndSwap(h, next)
		}

		if taken {
			return value, true
		}
		if next == nil {
			var zero T
			return zero, false
		}
	}
}

// Iterate returns a sequence that starts from the head as loaded when
// Iterate is called and walks next pointers lazily to the end of the
// chain, so nodes enqueued while the sequence is being ranged over are
// yielded too. Each node's payload is yielded regardless of whether a
// concurrent TryDequeue has already taken it. This matches
// the queue's documented test contract: every value enqueued with no
// concurrent dequeues appears exactly once.
func (q *BufferedQueue[T]) Iterate() iter.Seq[T] {
	start := q.head.Load()
	return func(yield func(T) bool) {
		for n := start.next.Load(); n != nil; n = n.next.Load() {
			if !yield(n.value) {
				return
			}
		}
	}
}
