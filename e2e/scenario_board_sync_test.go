package e2e

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"drawboard/domain"
	"drawboard/domain/event"
)

type BoardSyncSuite struct {
	BaseWsSuite
}

func TestBoardSyncSuite(t *testing.T) {
	suite.Run(t, new(BoardSyncSuite))
}

func (s *BoardSyncSuite) TestDrawReachesEveryoneButTheSender() {
	t := s.T()

	// Given two connected clients
	alice := s.Dial(t, "alice")
	defer alice.Close()
	s.Require().Empty(alice.Init.History)

	bob := s.Dial(t, "bob")
	defer bob.Close()
	s.Require().Len(bob.Init.Members, 2)

	joined, ok := alice.Next(t).(event.Joined)
	s.Require().True(ok)
	s.Require().Equal(bob.Init.Target.ID, joined.User.ID)

	// When alice draws a stroke
	alice.Send(t, `{"type":"draw","x0":10,"y0":10,"x1":50,"y1":50,"color":"#FF6B6B","width":5,"tool":"brush"}`)

	// Then bob receives it stamped with alice's identity
	draw, ok := bob.Next(t).(event.Draw)
	s.Require().True(ok)
	s.Require().Equal(alice.Init.Target.ID, draw.Op.UserID)
	s.Require().NotEmpty(draw.Op.ID)
	s.Require().NotZero(draw.Op.Timestamp)

	// And alice never hears her own stroke back
	alice.ExpectSilence(t)
}

func (s *BoardSyncSuite) TestUndoRedoRoundTripAcrossClients() {
	t := s.T()

	alice := s.Dial(t, "alice")
	defer alice.Close()
	bob := s.Dial(t, "bob")
	defer bob.Close()
	alice.Next(t) // bob's join announcement

	// Given a stroke from alice, seen by bob
	alice.Send(t, `{"type":"draw","x0":0,"y0":0,"x1":100,"y1":100}`)
	draw, ok := bob.Next(t).(event.Draw)
	s.Require().True(ok)

	// When bob undoes alice's stroke (the stack is shared)
	bob.Send(t, `{"type":"undo"}`)
	undo, ok := alice.Next(t).(event.Undo)
	s.Require().True(ok)
	s.Require().Equal(draw.Op.ID, undo.OpID)
	s.Require().Equal(bob.Init.Target.ID, undo.Author)

	// And alice redoes it from her local stack copy
	alice.Send(t, redoFrameFor(draw.Op))

	redo, ok := bob.Next(t).(event.Redo)
	s.Require().True(ok)
	s.Require().Equal(draw.Op.ID, redo.Op.ID)
}

func (s *BoardSyncSuite) TestLateJoinerReceivesHistorySnapshot() {
	t := s.T()

	alice := s.Dial(t, "alice")
	defer alice.Close()

	alice.Send(t, `{"type":"draw","x0":1,"y0":1,"x1":2,"y1":2}`)
	alice.Send(t, `{"type":"draw","x0":2,"y0":2,"x1":3,"y1":3}`)

	// The snapshot and the strokes ride the same serialized pipeline,
	// so a subsequent join always sees both operations.
	bob := s.Dial(t, "bob")
	defer bob.Close()

	s.Require().Len(bob.Init.History, 2)
	s.Require().Equal(alice.Init.Target.ID, bob.Init.History[0].UserID)
}

func (s *BoardSyncSuite) TestClearWipesTheCanvasForTheNextJoiner() {
	t := s.T()

	alice := s.Dial(t, "alice")
	defer alice.Close()
	bob := s.Dial(t, "bob")
	defer bob.Close()
	alice.Next(t) // bob's join announcement

	alice.Send(t, `{"type":"draw","x0":1,"y0":1,"x1":2,"y1":2}`)
	bob.Next(t)

	// When bob clears the canvas
	bob.Send(t, `{"type":"clear"}`)
	cleared, ok := alice.Next(t).(event.Clear)
	s.Require().True(ok)
	s.Require().Equal(bob.Init.Target.ID, cleared.Author)

	// Then a late joiner starts from nothing
	carol := s.Dial(t, "carol")
	defer carol.Close()
	s.Require().Empty(carol.Init.History)
}

func (s *BoardSyncSuite) TestDepartureIsAnnouncedOnce() {
	t := s.T()

	alice := s.Dial(t, "alice")
	defer alice.Close()
	bob := s.Dial(t, "bob")
	alice.Next(t) // bob's join announcement

	// When bob drops his connection
	bob.Close()

	left, ok := alice.Next(t).(event.Left)
	s.Require().True(ok)
	s.Require().Equal(bob.Init.Target.ID, left.User)
	s.Require().Len(left.Members, 1)

	alice.ExpectSilence(t)
}

func (s *BoardSyncSuite) TestMalformedFramesAreIgnored() {
	t := s.T()

	alice := s.Dial(t, "alice")
	defer alice.Close()
	bob := s.Dial(t, "bob")
	defer bob.Close()
	alice.Next(t) // bob's join announcement

	// Given garbage, an unknown kind, and an incomplete draw
	alice.Send(t, `not json at all`)
	alice.Send(t, `{"type":"teleport"}`)
	alice.Send(t, `{"type":"draw","x0":1}`)

	// And then a valid stroke
	alice.Send(t, `{"type":"draw","x0":1,"y0":1,"x1":2,"y1":2}`)

	// Then bob only ever sees the valid one
	draw, ok := bob.Next(t).(event.Draw)
	s.Require().True(ok)
	s.Require().Equal(float64(2), draw.Op.X1)
	bob.ExpectSilence(t)
}

// redoFrameFor rebuilds the redo submission a client would send from
// its local undo stack.
func redoFrameFor(op domain.Operation) string {
	return fmt.Sprintf(
		`{"type":"redo","operation":{"type":"draw","x0":%g,"y0":%g,"x1":%g,"y1":%g,"color":"%s","width":%g,"tool":"%s","opId":"%s","userId":%d,"timestamp":%d}}`,
		op.X0, op.Y0, op.X1, op.Y1, op.Color, op.Width, op.Tool, op.ID, op.UserID, op.Timestamp,
	)
}
