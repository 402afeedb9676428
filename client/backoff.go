package client

import "time"

const (
	// DefaultReconnectDelay is the wait before the first retry; each
	// following retry doubles it.
	DefaultReconnectDelay = time.Second
	// DefaultMaxReconnects bounds how many times a client retries
	// before giving up for good.
	DefaultMaxReconnects = 5
)

// Backoff implements the reconnection schedule: exponential doubling
// from a base delay, capped at a fixed number of attempts.
type Backoff struct {
	base     time.Duration
	max      int
	attempts int
}

func NewBackoff() *Backoff {
	return &Backoff{base: DefaultReconnectDelay, max: DefaultMaxReconnects}
}

// Next returns the delay before the upcoming attempt, or false when
// the attempt budget is spent.
func (b *Backoff) Next() (time.Duration, bool) {
	if b.attempts >= b.max {
		return 0, false
	}
	b.attempts++
	return b.base << (b.attempts - 1), true
}

// Reset rearms the schedule after a successful connection.
func (b *Backoff) Reset() {
	b.attempts = 0
}

func (b *Backoff) Attempts() int {
	return b.attempts
}
