package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// RoomID identifies an isolated drawing surface.
type RoomID string

// DefaultRoom is the implicit surface every connection lands on until the
// protocol grows a room selector.
const DefaultRoom RoomID = "main"

// Room is an isolated drawing surface: its membership, its bounded
// operation history, and the shared undo stack layered on top of it.
//
// Undo and redo operate on a single stack shared by every member, not
// per author: any participant's undo removes the most recent stroke
// regardless of who drew it. One linear history, one linear undo stack.
//
// Room is not safe for concurrent use. All mutation goes through the
// room's worker, which serializes commands in arrival order.
type Room struct {
	ID        RoomID
	CreatedAt time.Time

	members map[SessionID]Session
	history *History
	undo    *UndoStack

	now func() time.Time
}

func NewRoom(id RoomID, capacity int) *Room {
	return &Room{
		ID:        id,
		CreatedAt: time.Now(),
		members:   make(map[SessionID]Session),
		history:   NewHistory(capacity),
		undo:      &UndoStack{},
		now:       time.Now,
	}
}

func (r *Room) AddMember(s Session) {
	r.members[s.ID] = s
}

// RemoveMember reports whether the session was actually present, so a
// racing double-disconnect produces a single departure event.
func (r *Room) RemoveMember(id SessionID) bool {
	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	return true
}

func (r *Room) Member(id SessionID) (Session, bool) {
	s, ok := r.members[id]
	return s, ok
}

// Members returns the current membership ordered by identity.
func (r *Room) Members() []Session {
	out := lo.Values(r.members)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Room) Empty() bool { return len(r.members) == 0 }

// ApplyDraw validates, normalizes, and appends a stroke segment. The
// identifier and timestamp are assigned here when the author did not
// supply them; once assigned the operation is immutable.
func (r *Room) ApplyDraw(op Operation) (Operation, error) {
	op.Normalize()
	if err := op.Validate(); err != nil {
		return Operation{}, err
	}
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.Timestamp == 0 {
		op.Timestamp = r.now().UnixMilli()
	}
	return r.history.Append(op), nil
}

// Undo pops the shared history's tail onto the undo stack. On an empty
// history it reports false and nothing is broadcast by the caller.
func (r *Room) Undo() (Operation, bool) {
	op, ok := r.history.PopTail()
	if !ok {
		return Operation{}, false
	}
	r.undo.Push(op)
	return op, true
}

// Redo re-appends a caller-supplied operation, respecting capacity
// eviction. The restore only happens when the identifier is pending on
// the undo stack; an absent reference returns false with no append.
func (r *Room) Redo(op Operation) (Operation, bool, error) {
	op.Normalize()
	if err := op.Validate(); err != nil {
		return Operation{}, false, err
	}
	if !r.undo.Remove(op.ID) {
		return Operation{}, false, nil
	}
	return r.history.Append(op), true, nil
}

// Clear empties both the history and the undo stack. Not reversible.
func (r *Room) Clear() {
	r.history.Clear()
	r.undo.Clear()
}

// Snapshot copies the current history for a joining session.
func (r *Room) Snapshot() []Operation {
	return r.history.Snapshot()
}

func (r *Room) HistoryLen() int { return r.history.Len() }

func (r *Room) PendingRedo() int { return r.undo.Len() }
