// Package ws is the WebSocket boundary: it upgrades connections, decodes
// the client protocol into domain commands, and pumps serialized frames
// back out. Nothing here touches room state directly.
package ws

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"drawboard/domain"
	"drawboard/domain/event"
	"drawboard/errors"
)

var validate = validator.New()

// Inbound payloads. Coordinates are pointers so a missing field is
// distinguishable from zero and rejected, matching the rule that a
// malformed submission is dropped silently rather than defaulted.

type drawPayload struct {
	X0    *float64    `json:"x0" validate:"required"`
	Y0    *float64    `json:"y0" validate:"required"`
	X1    *float64    `json:"x1" validate:"required"`
	Y1    *float64    `json:"y1" validate:"required"`
	Color string      `json:"color"`
	Width float64     `json:"width"`
	Tool  domain.Tool `json:"tool"`
}

type redoPayload struct {
	Operation *domain.Operation `json:"operation" validate:"required"`
}

type cursorPayload struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// DecodeClientMessage parses one inbound frame into the command it maps
// to. Unknown kinds return ErrUnknownKind so the caller can log and
// ignore them without echoing anything to the sender.
func DecodeClientMessage(data []byte, room domain.RoomID, author domain.SessionID) (domain.Command, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch probe.Type {
	case event.KindDraw:
		var p drawPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidOperation, err)
		}
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidOperation, err)
		}
		return domain.DrawCommand{
			Room:   room,
			Author: author,
			Op: domain.Operation{
				X0:    *p.X0,
				Y0:    *p.Y0,
				X1:    *p.X1,
				Y1:    *p.Y1,
				Color: p.Color,
				Width: p.Width,
				Tool:  p.Tool,
			},
		}, nil

	case event.KindUndo:
		return domain.UndoCommand{Room: room, Author: author}, nil

	case event.KindRedo:
		var p redoPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidOperation, err)
		}
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidOperation, err)
		}
		return domain.RedoCommand{Room: room, Author: author, Op: *p.Operation}, nil

	case event.KindClear:
		return domain.ClearCommand{Room: room, Author: author}, nil

	case event.KindCursor:
		var p cursorPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidOperation, err)
		}
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidOperation, err)
		}
		return domain.CursorCommand{Room: room, Author: author, X: *p.X, Y: *p.Y}, nil

	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownKind, probe.Type)
	}
}
