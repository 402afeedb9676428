//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"drawboard/domain"
	"drawboard/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself; the supervisor handles panics and
// restarts. Keep workers small and focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker
// for logging and supervision, avoiding a manual naming method on the
// Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Envelope pairs an event with its frame, serialized exactly once by the
// fanout. Sinks forward the frame; they never re-encode.
type Envelope struct {
	Event event.Event
	Frame []byte
}

// EventSink is one recipient of broadcast envelopes. Delivery is
// best-effort: a sink that cannot accept a frame drops it and reports the
// error without blocking the fanout.
type EventSink interface {
	Consume(ctx context.Context, env Envelope) error
}

// IRegistry tracks which sink belongs to which session and which sessions
// are members of which room. Registration and room membership are
// distinct so that a joining session only starts receiving broadcasts
// once its snapshot has been cut.
type IRegistry interface {
	Register(id domain.SessionID, sink EventSink)
	Join(id domain.SessionID, room domain.RoomID)
	Leave(id domain.SessionID, room domain.RoomID)
	Drop(id domain.SessionID)
	SinkFor(id domain.SessionID) (EventSink, bool)
	SinksForRoom(room domain.RoomID) map[domain.SessionID]EventSink
	MembersOf(room domain.RoomID) []domain.SessionID
}

// IEngine is the transport's view of the synchronization core.
type IEngine interface {
	Connect(room domain.RoomID, sink EventSink) domain.Session
	Disconnect(id domain.SessionID, room domain.RoomID)
	Dispatch(cmd domain.Command)
	Start(ctx context.Context) error
	Stop()
}
