package growlist

import (
	"iter"
	"math"
)

// Iterate returns a snapshot sequence over every element currently in the
// fully-added prefix. The element count is sampled once, at the moment
// Iterate is called, not once the returned sequence starts being ranged
// over, so a caller that holds onto the sequence before consuming it
// still observes the same bound.
func (g *GrowList[T]) Iterate() iter.Seq[T] {
	seq, _ := g.IterateRange(0, math.MaxInt32)
	return seq
}

// IterateRange returns a snapshot sequence over indices [from, min(to,
// Count()-1)]. It fails with ErrInvalidRange if from is negative or
// greater than to. The sequence is not restartable and does not observe
// growth that happens after IterateRange is called.
func (g *GrowList[T]) IterateRange(from, to int) (iter.Seq[T], error) {
	if from < 0 || from > to {
		return nil, ErrInvalidRange
	}

	count := g.Count()
	end := to
	if end > count-1 {
		end = count - 1
	}
	st := g.store.Load()

	return func(yield func(T) bool) {
		for i := from; i <= end; i++ {
			if !yield(st.load(int64(i))) {
				return
			}
		}
	}, nil
}
