// Package domain contains core concepts of the drawing board.
// This file defines Session identities and display attributes.
// No runtime, network, or UI logic should be added here.
package domain

import "fmt"

// SessionID identifies one connected participant. IDs are small positive
// integers, unique for the lifetime of the process.
type SessionID int

// Palette is the fixed cycle of display colors handed out to sessions.
// A session's color is Palette[id mod len(Palette)].
var Palette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A",
	"#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E2",
}

// Session is one participant's server-side identity and display metadata.
type Session struct {
	ID       SessionID `json:"id"`
	Color    string    `json:"color"`
	Username string    `json:"username"`
}

// NewSession derives the display attributes for an assigned identity.
func NewSession(id SessionID) Session {
	return Session{
		ID:       id,
		Color:    Palette[int(id)%len(Palette)],
		Username: fmt.Sprintf("User %d", id),
	}
}
