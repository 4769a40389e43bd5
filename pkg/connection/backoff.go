package connection

import (
	"math/rand"
	"sync"
	"time"
)

// Backoff policy defaults.
const (
	// DefaultBaseDelay is the initial reconnection delay.
	DefaultBaseDelay = 1 * time.Second

	// DefaultMaxDelay is the maximum reconnection delay.
	DefaultMaxDelay = 60 * time.Second

	// JitterFactor is the maximum jitter as a fraction of the capped
	// delay.
	JitterFactor = 0.20

	// maxShift clamps the attempt exponent so the shift below never
	// overflows.
	maxShift = 31
)

// Delay computes the backoff delay for the given attempt number,
// starting at attempt 0.
//
// The result is min(base << attempt, max) plus a jitter term uniformly
// sampled from [0, JitterFactor] of the capped value. Attempts beyond
// 31 are treated as 31. The function is pure apart from the jitter
// sample; callers own the attempt counter.
func Delay(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		base = DefaultBaseDelay
	}
	if max <= 0 {
		max = DefaultMaxDelay
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}

	capped := max
	// Shifting can still overflow a duration for large bases; any
	// overflowed value is negative and caps the same way.
	if scaled := base << uint(attempt); scaled > 0 && scaled < max {
		capped = scaled
	}

	jitter := time.Duration(float64(capped) * JitterFactor * rand.Float64())
	return capped + jitter
}

// Backoff tracks the attempt counter for a single retry loop and
// derives delays from Delay. The zero value is not usable; call
// NewBackoff.
type Backoff struct {
	mu       sync.Mutex
	attempts int
	base     time.Duration
	max      time.Duration
}

// NewBackoff creates a backoff with the default base and maximum
// delays.
func NewBackoff() *Backoff {
	return NewBackoffWithLimits(DefaultBaseDelay, DefaultMaxDelay)
}

// NewBackoffWithLimits creates a backoff with custom base and maximum
// delays. Non-positive values fall back to the defaults.
func NewBackoffWithLimits(base, max time.Duration) *Backoff {
	if base <= 0 {
		base = DefaultBaseDelay
	}
	if max <= 0 {
		max = DefaultMaxDelay
	}
	return &Backoff{base: base, max: max}
}

// Next returns the delay for the current attempt and advances the
// counter.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := Delay(b.attempts, b.base, b.max)
	b.attempts++
	return d
}

// Peek returns the delay for the current attempt without advancing
// the counter. Jitter is resampled on every call.
func (b *Backoff) Peek() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Delay(b.attempts, b.base, b.max)
}

// Attempts returns the number of attempts since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Reset resets the attempt counter. Call this after a successful
// connection.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = 0
}
