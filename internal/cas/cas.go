// Package cas centralizes the "retry a compare-and-swap until it succeeds
// or a guard stops holding" shape used by growlist's CompareAndSwap and by
// the theoreticalCapacity claim in its growth protocol, instead of each
// call site hand-rolling its own copy of the loop.
package cas

import "go.uber.org/atomic"

// RetryPointer repeatedly CASes p from its current value to whatever next
// returns, until next reports it should stop (ok == false) or the CAS
// succeeds. It returns the value p held when retrying stopped.
func RetryPointer[T any](p *atomic.Pointer[T], next func(cur *T) (want *T, ok bool)) *T {
	for {
		cur := p.Load()
		want, ok := next(cur)
		if !ok {
			return cur
		}
		if p.CompareAndSwap(cur, want) {
			return want
		}
	}
}

// RetryInt64 repeatedly CASes a from its current value to whatever next
// returns, until next reports it should stop or the CAS succeeds.
func RetryInt64(a *atomic.Int64, next func(cur int64) (want int64, ok bool)) int64 {
	for {
		cur := a.Load()
		want, ok := next(cur)
		if !ok {
			return cur
		}
		if a.CompareAndSwap(cur, want) {
			return want
		}
	}
}
