// Package client holds the pieces a board client needs beyond the wire
// protocol itself: remote cursor bookkeeping and reconnection policy.
package client

import (
	"sort"
	"time"

	"drawboard/domain"
)

// CursorTTL is how long a remote cursor stays visible without a fresh
// position update.
const CursorTTL = 2 * time.Second

// CursorPosition is the last known pointer state of one remote user.
type CursorPosition struct {
	X, Y     float64
	Color    string
	LastSeen time.Time
}

// CursorTracker keeps the latest cursor per remote session and expires
// entries that have gone quiet. It is not safe for concurrent use.
type CursorTracker struct {
	ttl     time.Duration
	cursors map[domain.SessionID]CursorPosition
	now     func() time.Time
}

func NewCursorTracker() *CursorTracker {
	return &CursorTracker{
		ttl:     CursorTTL,
		cursors: make(map[domain.SessionID]CursorPosition),
		now:     time.Now,
	}
}

func (t *CursorTracker) Update(id domain.SessionID, x, y float64, color string) {
	t.cursors[id] = CursorPosition{X: x, Y: y, Color: color, LastSeen: t.now()}
}

// Remove drops a cursor immediately, typically on a user-left message.
func (t *CursorTracker) Remove(id domain.SessionID) {
	delete(t.cursors, id)
}

// Active returns the sessions whose cursor is still fresh, sorted for
// stable rendering, and drops the stale ones as a side effect.
func (t *CursorTracker) Active() map[domain.SessionID]CursorPosition {
	deadline := t.now().Add(-t.ttl)
	for id, c := range t.cursors {
		if c.LastSeen.Before(deadline) {
			delete(t.cursors, id)
		}
	}
	out := make(map[domain.SessionID]CursorPosition, len(t.cursors))
	for id, c := range t.cursors {
		out[id] = c
	}
	return out
}

// ActiveIDs is Active limited to the session identifiers.
func (t *CursorTracker) ActiveIDs() []domain.SessionID {
	active := t.Active()
	ids := make([]domain.SessionID, 0, len(active))
	for id := range active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
