package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistory_Append_EvictsOldestAtCapacity(t *testing.T) {
	req := require.New(t)
	h := NewHistory(DefaultHistoryCapacity)

	// Given a full history
	for i := 0; i < DefaultHistoryCapacity; i++ {
		h.Append(Operation{ID: fmt.Sprintf("op-%d", i)})
	}
	req.Equal(DefaultHistoryCapacity, h.Len())

	// When one more operation arrives
	h.Append(Operation{ID: "op-overflow"})

	// Then the size stays bounded and the oldest entry is gone
	req.Equal(DefaultHistoryCapacity, h.Len())
	snapshot := h.Snapshot()
	req.Equal("op-1", snapshot[0].ID)
	req.Equal("op-overflow", snapshot[len(snapshot)-1].ID)
	req.Equal(uint64(1), h.Evicted())
}

func TestHistory_PopTail_RemovesNewestFirst(t *testing.T) {
	req := require.New(t)
	h := NewHistory(10)
	h.Append(Operation{ID: "first"})
	h.Append(Operation{ID: "second"})

	// When popping twice
	op, ok := h.PopTail()
	req.True(ok)
	req.Equal("second", op.ID)

	op, ok = h.PopTail()
	req.True(ok)
	req.Equal("first", op.ID)

	// Then the history is empty and a further pop reports it
	_, ok = h.PopTail()
	req.False(ok)
	req.Zero(h.Len())
}

func TestHistory_Snapshot_IsACopy(t *testing.T) {
	req := require.New(t)
	h := NewHistory(10)
	h.Append(Operation{ID: "original"})

	// When mutating the snapshot
	snapshot := h.Snapshot()
	snapshot[0].ID = "mutated"

	// Then the history is untouched
	req.Equal("original", h.Snapshot()[0].ID)
}

func TestHistory_ByUser_And_After(t *testing.T) {
	req := require.New(t)
	h := NewHistory(10)
	h.Append(Operation{ID: "a", UserID: 1, Timestamp: 100})
	h.Append(Operation{ID: "b", UserID: 2, Timestamp: 200})
	h.Append(Operation{ID: "c", UserID: 1, Timestamp: 300})

	byUser := h.ByUser(1)
	req.Len(byUser, 2)
	req.Equal("a", byUser[0].ID)
	req.Equal("c", byUser[1].ID)

	after := h.After(150)
	req.Len(after, 2)
	req.Equal("b", after[0].ID)
}

func TestUndoStack_Remove_MatchesByID(t *testing.T) {
	req := require.New(t)
	s := &UndoStack{}
	s.Push(Operation{ID: "x"})
	s.Push(Operation{ID: "y"})

	// When removing a pending operation
	req.True(s.Remove("x"))

	// Then a second removal of the same ID fails
	req.False(s.Remove("x"))
	req.Equal(1, s.Len())
}

func TestUndoStack_Clear_DropsEverything(t *testing.T) {
	req := require.New(t)
	s := &UndoStack{}
	s.Push(Operation{ID: "x"})
	s.Push(Operation{ID: "y"})

	s.Clear()

	req.Zero(s.Len())
	req.False(s.Remove("x"))
}
