package services

import (
	"drawboard/contract"
	"drawboard/domain"
)

// IBoardService is the transport's entry point into the drawing core.
type IBoardService interface {
	Connect(room domain.RoomID, sink contract.EventSink) domain.Session
	Disconnect(id domain.SessionID, room domain.RoomID)
	Draw(room domain.RoomID, author domain.SessionID, op domain.Operation)
	Undo(room domain.RoomID, author domain.SessionID)
	Redo(room domain.RoomID, author domain.SessionID, op domain.Operation)
	ClearCanvas(room domain.RoomID, author domain.SessionID)
	Cursor(room domain.RoomID, author domain.SessionID, x, y float64)
}

// BoardService is a thin facade: it shapes requests into commands and
// hands them to the engine's serialized pipeline. No business rules live
// here.
type BoardService struct {
	engine contract.IEngine
}

func NewBoardService(engine contract.IEngine) *BoardService {
	return &BoardService{engine: engine}
}

func (s *BoardService) Connect(room domain.RoomID, sink contract.EventSink) domain.Session {
	return s.engine.Connect(room, sink)
}

func (s *BoardService) Disconnect(id domain.SessionID, room domain.RoomID) {
	s.engine.Disconnect(id, room)
}

func (s *BoardService) Draw(room domain.RoomID, author domain.SessionID, op domain.Operation) {
	s.engine.Dispatch(domain.DrawCommand{Room: room, Author: author, Op: op})
}

func (s *BoardService) Undo(room domain.RoomID, author domain.SessionID) {
	s.engine.Dispatch(domain.UndoCommand{Room: room, Author: author})
}

func (s *BoardService) Redo(room domain.RoomID, author domain.SessionID, op domain.Operation) {
	s.engine.Dispatch(domain.RedoCommand{Room: room, Author: author, Op: op})
}

func (s *BoardService) ClearCanvas(room domain.RoomID, author domain.SessionID) {
	s.engine.Dispatch(domain.ClearCommand{Room: room, Author: author})
}

func (s *BoardService) Cursor(room domain.RoomID, author domain.SessionID, x, y float64) {
	s.engine.Dispatch(domain.CursorCommand{Room: room, Author: author, X: x, Y: y})
}
