package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"drawboard/domain"
	"drawboard/domain/event"
	"drawboard/observability"
)

func newTestRoomWorker(t *testing.T) (*RoomWorker, chan domain.Command, chan event.Event) {
	t.Helper()
	commands := make(chan domain.Command, 16)
	events := make(chan event.Event, 16)
	worker := NewRoomWorker(
		domain.NewRoom(domain.DefaultRoom, domain.DefaultHistoryCapacity),
		commands, events,
		slog.Default(), observability.NewMonitor(),
		DefaultCursorInterval, nil, nil,
	)
	return worker, commands, events
}

func collect(t *testing.T, events <-chan event.Event, n int) []event.Event {
	t.Helper()
	out := make([]event.Event, 0, n)
	for len(out) < n {
		select {
		case e := <-events:
			out = append(out, e)
		case <-time.After(1 * time.Second):
			t.Fatalf("expected %d events, got %d", n, len(out))
		}
	}
	return out
}

func TestRoomWorker_Join_EmitsInitThenJoined(t *testing.T) {
	req := require.New(t)
	worker, _, events := newTestRoomWorker(t)
	ctx := context.Background()

	// When a session joins
	worker.apply(ctx, domain.JoinCommand{Room: domain.DefaultRoom, Session: domain.NewSession(1)})

	// Then the snapshot goes out before the membership announcement
	got := collect(t, events, 2)
	init, ok := got[0].(event.Init)
	req.True(ok)
	req.Equal(domain.SessionID(1), init.Target.ID)
	req.Empty(init.History)
	req.Len(init.Members, 1)

	joined, ok := got[1].(event.Joined)
	req.True(ok)
	req.Equal(domain.SessionID(1), joined.User.ID)
}

func TestRoomWorker_Draw_StampsAuthorAndBroadcasts(t *testing.T) {
	req := require.New(t)
	worker, _, events := newTestRoomWorker(t)
	ctx := context.Background()
	worker.apply(ctx, domain.JoinCommand{Room: domain.DefaultRoom, Session: domain.NewSession(1)})
	collect(t, events, 2)

	// When a stroke arrives claiming another author
	worker.apply(ctx, domain.DrawCommand{
		Room:   domain.DefaultRoom,
		Author: 1,
		Op:     domain.Operation{X1: 5, Y1: 5, UserID: 99},
	})

	// Then the connection's identity wins
	draw, ok := collect(t, events, 1)[0].(event.Draw)
	req.True(ok)
	req.Equal(domain.SessionID(1), draw.Op.UserID)
	req.NotEmpty(draw.Op.ID)
}

func TestRoomWorker_Draw_InvalidIsDroppedWithoutBroadcast(t *testing.T) {
	req := require.New(t)
	worker, _, events := newTestRoomWorker(t)
	ctx := context.Background()
	worker.apply(ctx, domain.JoinCommand{Room: domain.DefaultRoom, Session: domain.NewSession(1)})
	collect(t, events, 2)

	// When a stroke with a negative width arrives
	worker.apply(ctx, domain.DrawCommand{
		Room:   domain.DefaultRoom,
		Author: 1,
		Op:     domain.Operation{Width: -3},
	})

	// Then no event is emitted
	select {
	case e := <-events:
		req.Failf("unexpected broadcast", "%T", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRoomWorker_Undo_EmptyHistoryEmitsNothing(t *testing.T) {
	req := require.New(t)
	worker, _, events := newTestRoomWorker(t)
	ctx := context.Background()
	worker.apply(ctx, domain.JoinCommand{Room: domain.DefaultRoom, Session: domain.NewSession(1)})
	collect(t, events, 2)

	worker.apply(ctx, domain.UndoCommand{Room: domain.DefaultRoom, Author: 1})

	select {
	case e := <-events:
		req.Failf("unexpected broadcast", "%T", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRoomWorker_Redo_StaleReferenceEmitsNothing(t *testing.T) {
	req := require.New(t)
	worker, _, events := newTestRoomWorker(t)
	ctx := context.Background()
	worker.apply(ctx, domain.JoinCommand{Room: domain.DefaultRoom, Session: domain.NewSession(1)})
	collect(t, events, 2)

	// When a redo references an operation that was never undone
	worker.apply(ctx, domain.RedoCommand{
		Room:   domain.DefaultRoom,
		Author: 1,
		Op:     domain.Operation{ID: "ghost", X1: 5, Y1: 5},
	})

	// Then nothing is restored or broadcast
	select {
	case e := <-events:
		req.Failf("unexpected broadcast", "%T", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRoomWorker_Cursor_RateLimited(t *testing.T) {
	req := require.New(t)
	worker, _, events := newTestRoomWorker(t)
	ctx := context.Background()
	worker.apply(ctx, domain.JoinCommand{Room: domain.DefaultRoom, Session: domain.NewSession(1)})
	collect(t, events, 2)

	// Given a controllable clock
	current := time.Unix(0, 0)
	worker.now = func() time.Time { return current }

	// When three positions arrive, the middle one inside the mute window
	worker.apply(ctx, domain.CursorCommand{Room: domain.DefaultRoom, Author: 1, X: 1, Y: 1})
	current = current.Add(10 * time.Millisecond)
	worker.apply(ctx, domain.CursorCommand{Room: domain.DefaultRoom, Author: 1, X: 2, Y: 2})
	current = current.Add(DefaultCursorInterval)
	worker.apply(ctx, domain.CursorCommand{Room: domain.DefaultRoom, Author: 1, X: 3, Y: 3})

	// Then only the first and last are relayed, carrying the member color
	got := collect(t, events, 2)
	first, ok := got[0].(event.Cursor)
	req.True(ok)
	req.Equal(float64(1), first.X)
	req.Equal(domain.NewSession(1).Color, first.Color)

	last, ok := got[1].(event.Cursor)
	req.True(ok)
	req.Equal(float64(3), last.X)
}

func TestRoomWorker_LastLeaveRetiresWorker(t *testing.T) {
	req := require.New(t)
	commands := make(chan domain.Command, 16)
	events := make(chan event.Event, 16)

	var emptied []domain.RoomID
	worker := NewRoomWorker(
		domain.NewRoom(domain.DefaultRoom, domain.DefaultHistoryCapacity),
		commands, events,
		slog.Default(), observability.NewMonitor(),
		DefaultCursorInterval,
		func(id domain.RoomID) { emptied = append(emptied, id) },
		nil,
	)

	done := make(chan error, 1)
	go func() { done <- worker.Run(context.Background()) }()

	// Given one member
	commands <- domain.JoinCommand{Room: domain.DefaultRoom, Session: domain.NewSession(1)}
	collect(t, events, 2)

	// When it leaves
	commands <- domain.LeaveCommand{Room: domain.DefaultRoom, Author: 1}

	// Then a single departure is announced and the worker finishes
	left, ok := collect(t, events, 1)[0].(event.Left)
	req.True(ok)
	req.Equal(domain.SessionID(1), left.User)
	req.Empty(left.Members)

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(1 * time.Second):
		req.Fail("worker did not retire after the last leave")
	}
	req.Equal([]domain.RoomID{domain.DefaultRoom}, emptied)
}

func TestRoomWorker_DuplicateLeaveEmitsSingleDeparture(t *testing.T) {
	req := require.New(t)
	worker, _, events := newTestRoomWorker(t)
	ctx := context.Background()
	worker.apply(ctx, domain.JoinCommand{Room: domain.DefaultRoom, Session: domain.NewSession(1)})
	worker.apply(ctx, domain.JoinCommand{Room: domain.DefaultRoom, Session: domain.NewSession(2)})
	collect(t, events, 4)

	// When the same session leaves twice
	worker.apply(ctx, domain.LeaveCommand{Room: domain.DefaultRoom, Author: 1})
	worker.apply(ctx, domain.LeaveCommand{Room: domain.DefaultRoom, Author: 1})

	// Then exactly one user-left goes out
	_, ok := collect(t, events, 1)[0].(event.Left)
	req.True(ok)
	select {
	case e := <-events:
		req.Failf("unexpected broadcast", "%T", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRoomWorker_Drain_RedispatchesBufferedJoins(t *testing.T) {
	req := require.New(t)
	commands := make(chan domain.Command, 16)
	events := make(chan event.Event, 16)

	var redispatched []domain.Command
	worker := NewRoomWorker(
		domain.NewRoom(domain.DefaultRoom, domain.DefaultHistoryCapacity),
		commands, events,
		slog.Default(), observability.NewMonitor(),
		DefaultCursorInterval,
		func(domain.RoomID) {},
		func(cmd domain.Command) { redispatched = append(redispatched, cmd) },
	)

	// Given commands buffered behind the final leave
	worker.apply(context.Background(), domain.JoinCommand{Room: domain.DefaultRoom, Session: domain.NewSession(1)})
	commands <- domain.JoinCommand{Room: domain.DefaultRoom, Session: domain.NewSession(2)}
	commands <- domain.DrawCommand{Room: domain.DefaultRoom, Author: 3}

	worker.apply(context.Background(), domain.LeaveCommand{Room: domain.DefaultRoom, Author: 1})

	// When the retired worker drains its channel
	worker.drain()

	// Then the join survives and the stale draw is discarded
	req.Len(redispatched, 1)
	join, ok := redispatched[0].(domain.JoinCommand)
	req.True(ok)
	req.Equal(domain.SessionID(2), join.Session.ID)
}
