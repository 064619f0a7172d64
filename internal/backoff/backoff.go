// Package backoff provides the bounded exponential back-off used by
// growlist and bufferedqueue while they spin on a contended CAS. The
// durations are explicitly not part of any contract (spec leaves them
// open); callers just need "wait a bit longer each time, but not forever".
package backoff

import (
	"time"

	cenkalti "github.com/cenkalti/backoff/v4"
)

const (
	initialInterval = time.Millisecond
	maxInterval     = 16 * time.Millisecond
)

// Backoff is a single contention loop's pacing state. It is not safe for
// concurrent use; each spinning goroutine owns one.
type Backoff struct {
	b *cenkalti.ExponentialBackOff
}

// New returns a Backoff ready for a fresh contention loop.
func New() *Backoff {
	b := cenkalti.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	b.MaxInterval = maxInterval
	b.MaxElapsedTime = 0 // contention is never an error; never give up
	b.Reset()
	return &Backoff{b: b}
}

// Wait sleeps for the next back-off interval.
func (bo *Backoff) Wait() {
	d := bo.b.NextBackOff()
	if d == cenkalti.Stop {
		d = maxInterval
	}
	time.Sleep(d)
}

// Reset restarts the back-off schedule from its initial interval.
func (bo *Backoff) Reset() {
	bo.b.Reset()
}
