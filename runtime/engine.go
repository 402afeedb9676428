// Package runtime owns the synchronization core: session identity,
// sink registration, the room directory, and the serialized per-room
// command pipeline. It orchestrates without containing wire or UI logic.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"drawboard/contract"
	"drawboard/domain"
	"drawboard/domain/event"
	"drawboard/observability"
	"drawboard/runtime/workers"
)

var _ contract.IEngine = (*Engine)(nil)

// enqueueRetryDelay paces lifecycle enqueue attempts against a full
// room channel.
const enqueueRetryDelay = 5 * time.Millisecond

// Engine is the room directory and the entry point for every mutating
// request. Each room gets a dedicated command channel consumed by a
// single RoomWorker, so all appends, undos, and clears against one room
// apply in arrival order. Rooms are created on first join and dropped as
// soon as their member set empties.
type Engine struct {
	log        *slog.Logger
	monitor    *observability.Monitor
	sessions   *SessionRegistry
	registry   contract.IRegistry
	supervisor contract.ISupervisor

	mu    sync.Mutex
	rooms map[domain.RoomID]chan domain.Command

	events chan event.Event

	bufferSize      int
	historyCapacity int
	cursorInterval  time.Duration
	sinkTimeout     time.Duration
	metricInterval  time.Duration

	// runCtx lives from construction, not from Start, so sessions may
	// connect while the engine is still booting. Start ties it to the
	// parent context; Stop cancels it. Both fields are immutable after
	// NewEngine.
	runCtx context.Context
	cancel context.CancelFunc
}

func NewEngine(
	log *slog.Logger,
	monitor *observability.Monitor,
	sessions *SessionRegistry,
	registry contract.IRegistry,
	supervisor contract.ISupervisor,
	bufferSize, historyCapacity int,
	cursorInterval, sinkTimeout, metricInterval time.Duration,
) *Engine {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	runCtx, cancel := context.WithCancel(context.Background())
	return &Engine{
		runCtx:          runCtx,
		cancel:          cancel,
		log:             log,
		monitor:         monitor,
		sessions:        sessions,
		registry:        registry,
		supervisor:      supervisor,
		rooms:           make(map[domain.RoomID]chan domain.Command),
		events:          make(chan event.Event, bufferSize),
		bufferSize:      bufferSize,
		historyCapacity: historyCapacity,
		cursorInterval:  cursorInterval,
		sinkTimeout:     sinkTimeout,
		metricInterval:  metricInterval,
	}
}

// Connect assigns an identity to a fresh transport connection, registers
// its sink, and queues the join into the room's serialized pipeline. The
// init snapshot arrives through the sink once the join is processed.
func (e *Engine) Connect(room domain.RoomID, sink contract.EventSink) domain.Session {
	sess := e.sessions.Register()
	e.registry.Register(sess.ID, sink)
	e.monitor.IncrConnect()
	e.log.Info("Client connected", "session", sess.ID, "room", room, "total", e.sessions.Count())
	e.Dispatch(domain.JoinCommand{Room: room, Session: sess})
	return sess
}

// Disconnect tears a session down. Safe to call more than once: every
// step tolerates an already-removed session.
func (e *Engine) Disconnect(id domain.SessionID, room domain.RoomID) {
	e.Dispatch(domain.LeaveCommand{Room: room, Author: id})
	e.sessions.Unregister(id)
	e.monitor.IncrDisconnect()
	e.log.Info("Client disconnected", "session", id, "total", e.sessions.Count())
}

// Dispatch routes a command to its room's channel. Content commands
// (draw, undo, redo, clear, cursor) never block: a full channel drops
// them with a warning, and an unknown room means they are stale. Joins
// and leaves are exempt from both rules; membership and reaping depend
// on every one of them reaching the worker, so they go through
// enqueueLifecycle instead.
func (e *Engine) Dispatch(cmd domain.Command) {
	switch cmd.(type) {
	case domain.JoinCommand, domain.LeaveCommand:
		e.enqueueLifecycle(cmd)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ch, ok := e.rooms[cmd.RoomID()]
	if !ok {
		e.log.Warn("Dropping command for unknown room", "room", cmd.RoomID())
		return
	}

	select {
	case ch <- cmd:
	default:
		e.log.Warn("Room command channel full, dropping command", "room", cmd.RoomID())
	}
}

// enqueueLifecycle places a join or leave in its room's pipeline no
// matter how congested it is, re-resolving the room each attempt so a
// retirement between attempts lands the command in a fresh worker. The
// send attempt happens under the directory lock: an enqueue that
// succeeds while the room entry is still present is ordered before the
// room's retirement, so the worker (or its drain) is guaranteed to see
// it. Only a join may create a room; a leave aimed at a room that no
// longer exists has no worker left to tell, so its sink is removed
// directly.
func (e *Engine) enqueueLifecycle(cmd domain.Command) {
	for {
		e.mu.Lock()
		ch, ok := e.rooms[cmd.RoomID()]
		if !ok {
			if _, isJoin := cmd.(domain.JoinCommand); !isJoin {
				e.mu.Unlock()
				if leave, isLeave := cmd.(domain.LeaveCommand); isLeave {
					e.registry.Drop(leave.Author)
				}
				return
			}
			ch = e.spawnRoom(cmd.RoomID())
		}

		select {
		case ch <- cmd:
			e.mu.Unlock()
			return
		default:
		}
		e.mu.Unlock()

		select {
		case <-e.runCtx.Done():
			return
		case <-time.After(enqueueRetryDelay):
		}
	}
}

// spawnRoom creates the room state and starts its worker under the
// supervisor. Caller holds e.mu.
func (e *Engine) spawnRoom(id domain.RoomID) chan domain.Command {
	ch := make(chan domain.Command, e.bufferSize)
	e.rooms[id] = ch

	worker := workers.NewRoomWorker(
		domain.NewRoom(id, e.historyCapacity),
		ch,
		e.events,
		e.log,
		e.monitor,
		e.cursorInterval,
		e.retireRoom,
		e.Dispatch,
	)
	e.supervisor.Start(e.runCtx, worker)
	e.log.Info("Room created", "room", id)
	return ch
}

// retireRoom is called by a room worker, under no lock of its own, once
// the last member left. After the directory entry is gone no new command
// can reach the old channel; the worker drains what is already buffered.
func (e *Engine) retireRoom(id domain.RoomID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.rooms, id)
	e.log.Info("Room deleted (empty)", "room", id)
}

// RoomCount reports how many rooms are currently live.
func (e *Engine) RoomCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rooms)
}

// Start runs the fanout and telemetry under supervision and blocks until
// Stop or parent cancellation. Rooms spawned before Start already run
// under the engine's own context; Start only chains that context to the
// caller's.
func (e *Engine) Start(ctx context.Context) error {
	stop := context.AfterFunc(ctx, e.cancel)
	defer stop()

	e.supervisor.Add(workers.NewEventFanout(e.log, e.registry, e.events, e.monitor, e.sinkTimeout))
	e.supervisor.Add(workers.NewTelemetryWorker(e.log, e.monitor, e.sessions.Count, e.RoomCount, e.metricInterval))

	e.log.Info("Starting engine and all supervised workers")
	e.supervisor.Run(e.runCtx)
	return nil
}

// Stop cancels every worker, room workers included, and lets Start
// return once they drain.
func (e *Engine) Stop() {
	e.log.Info("Requesting engine shutdown")
	e.cancel()
	e.supervisor.Stop()
}
