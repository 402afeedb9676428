package domain

// Command is the closed set of client-originated requests a room worker
// can apply. Each variant carries the surface it targets; workers match
// exhaustively on the concrete type.
type Command interface {
	RoomID() RoomID
}

// JoinCommand adds a session to a room. Processing it inside the room's
// serialized turn is what makes the init snapshot atomic with membership.
type JoinCommand struct {
	Room    RoomID
	Session Session
}

func (c JoinCommand) RoomID() RoomID { return c.Room }

// LeaveCommand removes a session from a room. Idempotent: a session
// already removed causes no duplicate departure broadcast.
type LeaveCommand struct {
	Room   RoomID
	Author SessionID
}

func (c LeaveCommand) RoomID() RoomID { return c.Room }

// DrawCommand records one stroke segment.
type DrawCommand struct {
	Room   RoomID
	Author SessionID
	Op     Operation
}

func (c DrawCommand) RoomID() RoomID { return c.Room }

// UndoCommand pops the shared history's tail, whoever drew it.
type UndoCommand struct {
	Room   RoomID
	Author SessionID
}

func (c UndoCommand) RoomID() RoomID { return c.Room }

// RedoCommand restores the operation the client round-trips from its
// previous undo.
type RedoCommand struct {
	Room   RoomID
	Author SessionID
	Op     Operation
}

func (c RedoCommand) RoomID() RoomID { return c.Room }

// ClearCommand wipes the room's history and undo stack.
type ClearCommand struct {
	Room   RoomID
	Author SessionID
}

func (c ClearCommand) RoomID() RoomID { return c.Room }

// CursorCommand is an ephemeral pointer position. Never stored.
type CursorCommand struct {
	Room   RoomID
	Author SessionID
	X, Y   float64
}

func (c CursorCommand) RoomID() RoomID { return c.Room }
