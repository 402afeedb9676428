package workers

import (
	"context"
	"log/slog"
	"time"

	"drawboard/contract"
	"drawboard/domain"
	"drawboard/domain/event"
	"drawboard/observability"
)

var _ contract.Worker = (*RoomWorker)(nil)

// DefaultCursorInterval is the minimum gap between relayed cursor
// positions per session. Faster updates are muted, not queued.
const DefaultCursorInterval = 50 * time.Millisecond

// RoomWorker is the single writer for one room. Every mutation of the
// room's history and undo stack happens here, in the order commands were
// received, which is what gives the shared log its total order under
// concurrent sessions.
//
// The worker retires (returns nil) once the last member leaves; the
// engine drops the room with it.
type RoomWorker struct {
	room           *domain.Room
	commands       <-chan domain.Command
	events         chan<- event.Event
	log            *slog.Logger
	monitor        *observability.Monitor
	cursorInterval time.Duration
	lastCursor     map[domain.SessionID]time.Time
	joined         bool
	now            func() time.Time
	onEmpty        func(domain.RoomID)
	redispatch     func(domain.Command)
}

func NewRoomWorker(
	room *domain.Room,
	commands <-chan domain.Command,
	events chan<- event.Event,
	log *slog.Logger,
	monitor *observability.Monitor,
	cursorInterval time.Duration,
	onEmpty func(domain.RoomID),
	redispatch func(domain.Command),
) *RoomWorker {
	if cursorInterval <= 0 {
		cursorInterval = DefaultCursorInterval
	}
	return &RoomWorker{
		room:           room,
		commands:       commands,
		events:         events,
		log:            log,
		monitor:        monitor,
		cursorInterval: cursorInterval,
		lastCursor:     make(map[domain.SessionID]time.Time),
		now:            time.Now,
		onEmpty:        onEmpty,
		redispatch:     redispatch,
	}
}

func (w *RoomWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping room worker", "room", w.room.ID)
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				return nil
			}
			if done := w.apply(ctx, cmd); done {
				w.log.Info("Room emptied, retiring worker", "room", w.room.ID)
				w.drain()
				return nil
			}
		}
	}
}

// apply executes one command against the room and emits the resulting
// events. Returns true once the room has emptied.
func (w *RoomWorker) apply(ctx context.Context, cmd domain.Command) bool {
	switch c := cmd.(type) {
	case domain.JoinCommand:
		w.room.AddMember(c.Session)
		w.joined = true
		members := w.room.Members()
		// Init first: the fanout activates the joiner's subscription
		// while processing it, so the snapshot stays atomic with
		// membership.
		w.emit(ctx, event.Init{
			Room:    w.room.ID,
			Target:  c.Session,
			History: w.room.Snapshot(),
			Members: members,
		})
		w.emit(ctx, event.Joined{Room: w.room.ID, User: c.Session, Members: members})

	case domain.LeaveCommand:
		if !w.room.RemoveMember(c.Author) {
			// Already gone; disconnects may race with prior cleanup.
			return false
		}
		delete(w.lastCursor, c.Author)
		w.emit(ctx, event.Left{Room: w.room.ID, User: c.Author, Members: w.room.Members()})
		if w.room.Empty() {
			if w.onEmpty != nil {
				w.onEmpty(w.room.ID)
			}
			return true
		}

	case domain.DrawCommand:
		op := c.Op
		op.UserID = c.Author
		applied, err := w.room.ApplyDraw(op)
		if err != nil {
			// Rejected silently at the boundary: no broadcast, no echo.
			w.log.Debug("Draw rejected", "room", w.room.ID, "author", c.Author, "error", err)
			w.monitor.IncrRejected()
			return false
		}
		w.monitor.IncrAppended()
		w.emit(ctx, event.Draw{Room: w.room.ID, Op: applied})

	case domain.UndoCommand:
		op, ok := w.room.Undo()
		if !ok {
			// Empty history: no-op, no broadcast.
			return false
		}
		w.monitor.IncrUndo()
		w.emit(ctx, event.Undo{Room: w.room.ID, Author: c.Author, OpID: op.ID})

	case domain.RedoCommand:
		applied, matched, err := w.room.Redo(c.Op)
		if err != nil {
			w.log.Warn("Redo payload rejected", "room", w.room.ID, "author", c.Author, "error", err)
			w.monitor.IncrRejected()
			return false
		}
		if !matched {
			// The referenced operation is no longer pending, likely
			// evicted or cleared since the undo. Ignored rather than
			// trusting the payload.
			w.log.Warn("Redo ignored, operation not pending",
				"room", w.room.ID, "author", c.Author, "opId", c.Op.ID)
			w.monitor.IncrRejected()
			return false
		}
		w.monitor.IncrRedo()
		w.emit(ctx, event.Redo{Room: w.room.ID, Author: c.Author, Op: applied})

	case domain.ClearCommand:
		w.room.Clear()
		w.monitor.IncrClear()
		w.emit(ctx, event.Clear{Room: w.room.ID, Author: c.Author})

	case domain.CursorCommand:
		now := w.now()
		if last, ok := w.lastCursor[c.Author]; ok && now.Sub(last) < w.cursorInterval {
			w.monitor.IncrCursorMuted()
			return false
		}
		member, ok := w.room.Member(c.Author)
		if !ok {
			return false
		}
		w.lastCursor[c.Author] = now
		w.emit(ctx, event.Cursor{
			Room:   w.room.ID,
			Author: c.Author,
			X:      c.X,
			Y:      c.Y,
			Color:  member.Color,
		})

	default:
		w.log.Warn("Unhandled command", "room", w.room.ID, "command", cmd)
	}
	return false
}

// drain flushes whatever was buffered before the engine dropped the
// room entry. A join caught here is re-dispatched and lands in a fresh
// room; anything else is stale and discarded.
func (w *RoomWorker) drain() {
	for {
		select {
		case cmd, ok := <-w.commands:
			if !ok {
				return
			}
			if join, isJoin := cmd.(domain.JoinCommand); isJoin && w.redispatch != nil {
				w.redispatch(join)
				continue
			}
			w.log.Debug("Discarding command buffered for retired room", "room", w.room.ID)
		default:
			return
		}
	}
}

func (w *RoomWorker) emit(ctx context.Context, e event.Event) {
	select {
	case <-ctx.Done():
	case w.events <- e:
	}
}
