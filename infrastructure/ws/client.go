package ws

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"drawboard/contract"
	"drawboard/domain"
	"drawboard/errors"
	"drawboard/services"
)

const writeWait = 10 * time.Second

// session binds one WebSocket connection to one board identity. It
// implements contract.EventSink: the fanout hands it serialized frames
// and a dedicated write pump owns the connection, so the fanout never
// blocks on a slow socket.
type session struct {
	id      domain.SessionID
	room    domain.RoomID
	conn    *websocket.Conn
	send    chan contract.Envelope
	done    chan struct{}
	log     *slog.Logger
	service services.IBoardService
	once    sync.Once
}

func newSession(conn *websocket.Conn, room domain.RoomID, sendBuffer int,
	service services.IBoardService, log *slog.Logger) *session {
	return &session{
		room:    room,
		conn:    conn,
		send:    make(chan contract.Envelope, sendBuffer),
		done:    make(chan struct{}),
		log:     log,
		service: service,
	}
}

// Consume queues a frame for the write pump. It never blocks: a full
// buffer means the peer is not draining fast enough and the frame is
// dropped rather than stalling the fanout.
func (s *session) Consume(_ context.Context, env contract.Envelope) error {
	select {
	case <-s.done:
		return errors.ErrSlowConsumer
	default:
	}
	select {
	case s.send <- env:
		return nil
	default:
		return errors.ErrSlowConsumer
	}
}

func (s *session) writePump() {
	for {
		select {
		case env := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, env.Frame); err != nil {
				s.log.Debug("Write failed, closing connection", "session_id", s.id, "error", err)
				s.teardown()
				return
			}
		case <-s.done:
			return
		}
	}
}

// readPump decodes inbound frames and forwards them to the service.
// Malformed or unknown frames are logged and dropped, never echoed.
func (s *session) readPump() {
	defer s.teardown()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("Read failed", "session_id", s.id, "error", err)
			}
			return
		}
		cmd, err := DecodeClientMessage(data, s.room, s.id)
		if err != nil {
			if stderrors.Is(err, errors.ErrUnknownKind) {
				s.log.Warn("Discarding frame of unknown kind", "session_id", s.id, "error", err)
			} else {
				s.log.Debug("Discarding malformed frame", "session_id", s.id, "error", err)
			}
			continue
		}
		s.dispatch(cmd)
	}
}

func (s *session) dispatch(cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.DrawCommand:
		s.service.Draw(c.Room, c.Author, c.Op)
	case domain.UndoCommand:
		s.service.Undo(c.Room, c.Author)
	case domain.RedoCommand:
		s.service.Redo(c.Room, c.Author, c.Op)
	case domain.ClearCommand:
		s.service.ClearCanvas(c.Room, c.Author)
	case domain.CursorCommand:
		s.service.Cursor(c.Room, c.Author, c.X, c.Y)
	default:
		s.log.Warn("No dispatch route for command", "command", cmd)
	}
}

// teardown runs exactly once regardless of which pump dies first:
// detach from the board, then close the socket and release the pumps.
func (s *session) teardown() {
	s.once.Do(func() {
		s.service.Disconnect(s.id, s.room)
		close(s.done)
		_ = s.conn.Close()
	})
}
