package event

import (
	"encoding/json"
	"fmt"

	"drawboard/domain"
)

// Wire frames. Field names follow the protocol, not Go convention.

type initFrame struct {
	Type     string             `json:"type"`
	ClientID domain.SessionID   `json:"clientId"`
	Color    string             `json:"color"`
	History  []domain.Operation `json:"history"`
	Users    []domain.Session   `json:"users"`
}

type undoFrame struct {
	Type        string           `json:"type"`
	OperationID string           `json:"operationId"`
	UserID      domain.SessionID `json:"userId"`
}

type redoFrame struct {
	Type      string           `json:"type"`
	Operation domain.Operation `json:"operation"`
	UserID    domain.SessionID `json:"userId"`
}

type clearFrame struct {
	Type   string           `json:"type"`
	UserID domain.SessionID `json:"userId"`
}

type cursorFrame struct {
	Type   string           `json:"type"`
	UserID domain.SessionID `json:"userId"`
	X      float64          `json:"x"`
	Y      float64          `json:"y"`
	Color  string           `json:"color"`
}

type joinedFrame struct {
	Type  string           `json:"type"`
	User  domain.Session   `json:"user"`
	Users []domain.Session `json:"users"`
}

type leftFrame struct {
	Type   string           `json:"type"`
	UserID domain.SessionID `json:"userId"`
	Users  []domain.Session `json:"users"`
}

// Encode serializes an event exactly once; the fanout hands the resulting
// frame to every recipient unchanged.
func Encode(e Event) ([]byte, error) {
	switch evt := e.(type) {
	case Init:
		history := evt.History
		if history == nil {
			history = []domain.Operation{}
		}
		return json.Marshal(initFrame{
			Type:     KindInit,
			ClientID: evt.Target.ID,
			Color:    evt.Target.Color,
			History:  history,
			Users:    evt.Members,
		})
	case Draw:
		// A draw broadcast is the operation itself; its Kind field is
		// the type discriminator.
		return json.Marshal(evt.Op)
	case Undo:
		return json.Marshal(undoFrame{Type: KindUndo, OperationID: evt.OpID, UserID: evt.Author})
	case Redo:
		return json.Marshal(redoFrame{Type: KindRedo, Operation: evt.Op, UserID: evt.Author})
	case Clear:
		return json.Marshal(clearFrame{Type: KindClear, UserID: evt.Author})
	case Cursor:
		return json.Marshal(cursorFrame{Type: KindCursor, UserID: evt.Author, X: evt.X, Y: evt.Y, Color: evt.Color})
	case Joined:
		return json.Marshal(joinedFrame{Type: KindUserJoined, User: evt.User, Users: evt.Members})
	case Left:
		return json.Marshal(leftFrame{Type: KindUserLeft, UserID: evt.User, Users: evt.Members})
	default:
		return nil, fmt.Errorf("unencodable event %T", e)
	}
}

// Decode parses a server frame back into its event, with the room left
// empty: the wire protocol carries no room identifier today. Clients
// (and the probe tool) use this to consume the stream.
func Decode(data []byte) (Event, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch probe.Type {
	case KindInit:
		var f initFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return Init{
			Target:  domain.Session{ID: f.ClientID, Color: f.Color},
			History: f.History,
			Members: f.Users,
		}, nil
	case KindDraw:
		var op domain.Operation
		if err := json.Unmarshal(data, &op); err != nil {
			return nil, err
		}
		return Draw{Op: op}, nil
	case KindUndo:
		var f undoFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return Undo{Author: f.UserID, OpID: f.OperationID}, nil
	case KindRedo:
		var f redoFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return Redo{Author: f.UserID, Op: f.Operation}, nil
	case KindClear:
		var f clearFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return Clear{Author: f.UserID}, nil
	case KindCursor:
		var f cursorFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return Cursor{Author: f.UserID, X: f.X, Y: f.Y, Color: f.Color}, nil
	case KindUserJoined:
		var f joinedFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return Joined{User: f.User, Members: f.Users}, nil
	case KindUserLeft:
		var f leftFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return Left{User: f.UserID, Members: f.Users}, nil
	default:
		return nil, fmt.Errorf("unknown frame type %q", probe.Type)
	}
}
