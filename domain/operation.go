// Package domain contains core concepts of the drawing board.
// This file defines the Operation, the atomic unit of drawing history.
// Operations are immutable once appended.
package domain

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Tool selects how a stroke segment is applied to the canvas.
type Tool string

const (
	ToolBrush  Tool = "brush"
	ToolEraser Tool = "eraser"
)

// Operation kinds. Only stroke segments are recorded today.
const KindDraw = "draw"

// Defaults applied when a client omits optional style fields.
const (
	DefaultColor = "#000000"
	DefaultWidth = 3
)

// Operation is one recorded stroke segment with author, geometry, style,
// and identity. The JSON shape is the wire shape: a draw broadcast is the
// operation itself.
type Operation struct {
	Kind      string    `json:"type"`
	X0        float64   `json:"x0"`
	Y0        float64   `json:"y0"`
	X1        float64   `json:"x1"`
	Y1        float64   `json:"y1"`
	Color     string    `json:"color"`
	Width     float64   `json:"width" validate:"gt=0"`
	Tool      Tool      `json:"tool" validate:"oneof=brush eraser"`
	ID        string    `json:"opId"`
	UserID    SessionID `json:"userId"`
	Timestamp int64     `json:"timestamp"`
}

var validate = validator.New()

// Normalize fills the defaults a client may omit. It does not touch
// identity or geometry.
func (op *Operation) Normalize() {
	op.Kind = KindDraw
	if op.Color == "" {
		op.Color = DefaultColor
	}
	if op.Width == 0 {
		op.Width = DefaultWidth
	}
	if op.Tool == "" {
		op.Tool = ToolBrush
	}
}

// Validate checks the numeric constraints on a normalized operation.
// A rejected operation must never be appended or broadcast.
func (op Operation) Validate() error {
	for _, v := range []float64{op.X0, op.Y0, op.X1, op.Y1, op.Width} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("operation rejected: non-finite numeric field")
		}
	}
	if err := validate.Struct(op); err != nil {
		return fmt.Errorf("operation rejected: %w", err)
	}
	return nil
}
