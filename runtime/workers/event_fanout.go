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

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout drains the engine-wide event channel in order, serializes
// each event exactly once, and delivers the frame to the selected subset
// of the room's sinks.
//
// Delivery is best-effort with no guarantees regarding acknowledgment,
// durability, or retries: a sink that cannot accept a frame is logged
// and skipped, never waited on. EventFanout is not a message broker.
//
// Subscription changes ride the same ordered stream: an Init event
// activates the joiner's membership, a Left event retires the leaver's.
// Processing them in emission order is what keeps a snapshot and the
// subsequent live stream free of gaps and duplicates.
type EventFanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	events      <-chan event.Event
	monitor     *observability.Monitor
	sinkTimeout time.Duration
}

func NewEventFanout(
	log *slog.Logger,
	registry contract.IRegistry,
	events <-chan event.Event,
	monitor *observability.Monitor,
	sinkTimeout time.Duration,
) *EventFanout {
	if sinkTimeout <= 0 {
		sinkTimeout = 2 * time.Second
	}
	return &EventFanout{
		log:         log,
		registry:    registry,
		events:      events,
		monitor:     monitor,
		sinkTimeout: sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout routes one event. Recipient selection is exhaustive over the
// closed event set.
func (w *EventFanout) Fanout(ctx context.Context, evt event.Event) {
	frame, err := event.Encode(evt)
	if err != nil {
		w.log.Error("Dropping unencodable event", "kind", evt.Kind(), "error", err)
		return
	}
	env := contract.Envelope{Event: evt, Frame: frame}

	switch e := evt.(type) {
	case event.Init:
		// The joiner becomes a recipient now, after its snapshot was
		// cut; the init frame goes to it alone.
		w.registry.Join(e.Target.ID, e.Room)
		if sink, ok := w.registry.SinkFor(e.Target.ID); ok {
			w.deliver(ctx, e.Target.ID, sink, env)
		}
	case event.Joined:
		w.broadcast(ctx, e.Room, env, e.User.ID)
	case event.Left:
		// Retire the leaver first so the departure reaches only the
		// remaining members.
		w.registry.Leave(e.User, e.Room)
		w.broadcast(ctx, e.Room, env, 0)
	case event.Draw:
		w.broadcast(ctx, e.Room, env, e.Op.UserID)
	case event.Undo:
		w.broadcast(ctx, e.Room, env, e.Author)
	case event.Redo:
		w.broadcast(ctx, e.Room, env, e.Author)
	case event.Clear:
		w.broadcast(ctx, e.Room, env, e.Author)
	case event.Cursor:
		w.broadcast(ctx, e.Room, env, e.Author)
	default:
		w.log.Error("Unroutable event", "kind", evt.Kind())
	}
}

// broadcast delivers to every sink in the room except the excluded
// author. A zero exclude matches no session.
func (w *EventFanout) broadcast(ctx context.Context, room domain.RoomID, env contract.Envelope, exclude domain.SessionID) {
	for id, sink := range w.registry.SinksForRoom(room) {
		if id == exclude {
			continue
		}
		w.deliver(ctx, id, sink, env)
	}
}

// deliver hands the frame to one sink. A failed or slow recipient is
// logged and abandoned; cleanup stays with the transport's own close
// signal.
func (w *EventFanout) deliver(ctx context.Context, id domain.SessionID, sink contract.EventSink, env contract.Envelope) {
	sendCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sendCtx, env); err != nil {
		w.log.Warn("Delivery failed", "session", id, "kind", env.Event.Kind(), "error", err)
		w.monitor.IncrDroppedFrame()
		return
	}
	w.monitor.IncrBroadcast()
}
