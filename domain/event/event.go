// Package event defines the closed set of server-originated events and
// their wire encoding. One event type per server->client message kind;
// the fanout worker matches exhaustively to pick recipients.
package event

import "drawboard/domain"

// Wire message kinds, both directions.
const (
	KindInit       = "init"
	KindDraw       = "draw"
	KindUndo       = "undo"
	KindRedo       = "redo"
	KindClear      = "clear"
	KindCursor     = "cursor"
	KindUserJoined = "user-joined"
	KindUserLeft   = "user-left"
)

// Event is a server-originated message bound for one room's sessions.
type Event interface {
	RoomID() domain.RoomID
	Kind() string
}

// Init is the private snapshot sent to a newly joined session only:
// its identity, the full history, and the member list at the moment of
// join.
type Init struct {
	Room    domain.RoomID
	Target  domain.Session
	History []domain.Operation
	Members []domain.Session
}

func (e Init) RoomID() domain.RoomID { return e.Room }
func (e Init) Kind() string          { return KindInit }

// Draw relays one recorded stroke segment to everyone but its author.
type Draw struct {
	Room domain.RoomID
	Op   domain.Operation
}

func (e Draw) RoomID() domain.RoomID { return e.Room }
func (e Draw) Kind() string          { return KindDraw }

// Undo announces that the history tail was popped.
type Undo struct {
	Room   domain.RoomID
	Author domain.SessionID
	OpID   string
}

func (e Undo) RoomID() domain.RoomID { return e.Room }
func (e Undo) Kind() string          { return KindUndo }

// Redo announces a restored operation.
type Redo struct {
	Room   domain.RoomID
	Author domain.SessionID
	Op     domain.Operation
}

func (e Redo) RoomID() domain.RoomID { return e.Room }
func (e Redo) Kind() string          { return KindRedo }

// Clear announces that the canvas history was wiped.
type Clear struct {
	Room   domain.RoomID
	Author domain.SessionID
}

func (e Clear) RoomID() domain.RoomID { return e.Room }
func (e Clear) Kind() string          { return KindClear }

// Cursor is an ephemeral pointer position relay. Receivers expire stale
// cursors on their own; the server never stores or retries them.
type Cursor struct {
	Room   domain.RoomID
	Author domain.SessionID
	X, Y   float64
	Color  string
}

func (e Cursor) RoomID() domain.RoomID { return e.Room }
func (e Cursor) Kind() string          { return KindCursor }

// Joined announces a new member to everyone already present.
type Joined struct {
	Room    domain.RoomID
	User    domain.Session
	Members []domain.Session
}

func (e Joined) RoomID() domain.RoomID { return e.Room }
func (e Joined) Kind() string          { return KindUserJoined }

// Left announces a departure together with the refreshed member list.
type Left struct {
	Room    domain.RoomID
	User    domain.SessionID
	Members []domain.Session
}

func (e Left) RoomID() domain.RoomID { return e.Room }
func (e Left) Kind() string          { return KindUserLeft }
