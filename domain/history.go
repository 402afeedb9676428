package domain

// DefaultHistoryCapacity bounds the shared operation log of a room.
const DefaultHistoryCapacity = 1000

// History is the bounded, ordered, append-only log of operations for one
// room. When an append would exceed the capacity, the oldest entry is
// silently evicted. History is not safe for concurrent use: a room's
// worker is its single writer.
type History struct {
	capacity int
	ops      []Operation
	evicted  uint64
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

// Append records an operation, evicting the oldest entry if the log is
// full. Validation happens before this point; Append never rejects.
func (h *History) Append(op Operation) Operation {
	h.ops = append(h.ops, op)
	if len(h.ops) > h.capacity {
		// Shift rather than re-slice so the evicted head can be collected.
		copy(h.ops, h.ops[1:])
		h.ops = h.ops[:h.capacity]
		h.evicted++
	}
	return op
}

// PopTail removes and returns the most recently appended operation.
// The second return is false when there is nothing to undo.
func (h *History) PopTail() (Operation, bool) {
	if len(h.ops) == 0 {
		return Operation{}, false
	}
	op := h.ops[len(h.ops)-1]
	h.ops = h.ops[:len(h.ops)-1]
	return op, true
}

// Snapshot returns a copy of the log for safe handoff to a joining
// session. It never aliases internal storage.
func (h *History) Snapshot() []Operation {
	out := make([]Operation, len(h.ops))
	copy(out, h.ops)
	return out
}

// Clear empties the log. Used by the clear-canvas operation; irreversible.
func (h *History) Clear() {
	h.ops = nil
}

func (h *History) Len() int { return len(h.ops) }

// Evicted reports how many entries capacity eviction has discarded.
func (h *History) Evicted() uint64 { return h.evicted }

// ByUser returns the operations authored by one session, oldest first.
func (h *History) ByUser(id SessionID) []Operation {
	var out []Operation
	for _, op := range h.ops {
		if op.UserID == id {
			out = append(out, op)
		}
	}
	return out
}

// After returns the operations recorded strictly after the given
// server-assigned timestamp, oldest first.
func (h *History) After(timestamp int64) []Operation {
	var out []Operation
	for _, op := range h.ops {
		if op.Timestamp > timestamp {
			out = append(out, op)
		}
	}
	return out
}

// UndoStack holds popped operations awaiting a possible redo. An operation
// lives in at most one of {History, UndoStack} at a time.
type UndoStack struct {
	ops []Operation
}

func (s *UndoStack) Push(op Operation) {
	s.ops = append(s.ops, op)
}

// Remove drops the operation with the given identifier, reporting whether
// it was present. Redo uses this to keep the at-most-one-home invariant.
func (s *UndoStack) Remove(opID string) bool {
	for i, op := range s.ops {
		if op.ID == opID {
			s.ops = append(s.ops[:i], s.ops[i+1:]...)
			return true
		}
	}
	return false
}

func (s *UndoStack) Clear() {
	s.ops = nil
}

func (s *UndoStack) Len() int { return len(s.ops) }
