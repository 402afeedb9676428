package ws

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"drawboard/domain"
	"drawboard/errors"
)

func TestDecodeClientMessage_Draw(t *testing.T) {
	req := require.New(t)

	frame := []byte(`{"type":"draw","x0":10,"y0":20,"x1":30,"y1":40,"color":"#FF6B6B","width":5,"tool":"eraser"}`)
	cmd, err := DecodeClientMessage(frame, domain.DefaultRoom, 3)

	req.NoError(err)
	draw, ok := cmd.(domain.DrawCommand)
	req.True(ok)
	req.Equal(domain.SessionID(3), draw.Author)
	req.Equal(float64(10), draw.Op.X0)
	req.Equal(float64(40), draw.Op.Y1)
	req.Equal(domain.ToolEraser, draw.Op.Tool)
}

func TestDecodeClientMessage_Draw_ZeroCoordinatesAreValid(t *testing.T) {
	req := require.New(t)

	// The canvas origin is a legitimate stroke endpoint
	frame := []byte(`{"type":"draw","x0":0,"y0":0,"x1":0,"y1":0}`)
	_, err := DecodeClientMessage(frame, domain.DefaultRoom, 1)

	req.NoError(err)
}

func TestDecodeClientMessage_Draw_MissingCoordinateRejected(t *testing.T) {
	req := require.New(t)

	frame := []byte(`{"type":"draw","x0":1,"y0":2,"x1":3}`)
	_, err := DecodeClientMessage(frame, domain.DefaultRoom, 1)

	req.Error(err)
	req.ErrorIs(err, errors.ErrInvalidOperation)
}

func TestDecodeClientMessage_UndoAndClearCarryNoPayload(t *testing.T) {
	req := require.New(t)

	cmd, err := DecodeClientMessage([]byte(`{"type":"undo"}`), domain.DefaultRoom, 2)
	req.NoError(err)
	undo, ok := cmd.(domain.UndoCommand)
	req.True(ok)
	req.Equal(domain.SessionID(2), undo.Author)

	cmd, err = DecodeClientMessage([]byte(`{"type":"clear"}`), domain.DefaultRoom, 2)
	req.NoError(err)
	_, ok = cmd.(domain.ClearCommand)
	req.True(ok)
}

func TestDecodeClientMessage_Redo(t *testing.T) {
	req := require.New(t)

	frame := []byte(`{"type":"redo","operation":{"type":"draw","x0":1,"y0":1,"x1":2,"y1":2,"opId":"op-9","width":3,"tool":"brush"}}`)
	cmd, err := DecodeClientMessage(frame, domain.DefaultRoom, 4)

	req.NoError(err)
	redo, ok := cmd.(domain.RedoCommand)
	req.True(ok)
	req.Equal("op-9", redo.Op.ID)
}

func TestDecodeClientMessage_Redo_MissingOperationRejected(t *testing.T) {
	req := require.New(t)

	_, err := DecodeClientMessage([]byte(`{"type":"redo"}`), domain.DefaultRoom, 4)

	req.ErrorIs(err, errors.ErrInvalidOperation)
}

func TestDecodeClientMessage_Cursor(t *testing.T) {
	req := require.New(t)

	cmd, err := DecodeClientMessage([]byte(`{"type":"cursor","x":120,"y":80}`), domain.DefaultRoom, 5)

	req.NoError(err)
	cursor, ok := cmd.(domain.CursorCommand)
	req.True(ok)
	req.Equal(float64(120), cursor.X)
	req.Equal(float64(80), cursor.Y)
}

func TestDecodeClientMessage_UnknownKind(t *testing.T) {
	req := require.New(t)

	_, err := DecodeClientMessage([]byte(`{"type":"resize"}`), domain.DefaultRoom, 1)

	req.True(stderrors.Is(err, errors.ErrUnknownKind))
}

func TestDecodeClientMessage_MalformedJSON(t *testing.T) {
	req := require.New(t)

	_, err := DecodeClientMessage([]byte(`{"type":`), domain.DefaultRoom, 1)

	req.Error(err)
}
