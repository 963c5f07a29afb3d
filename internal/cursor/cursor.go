// Package cursor implements the turtle that moves over a canvas: a clamped
// position, one of eight compass headings, and a brush mode applied to every
// cell the cursor steps off.
package cursor

import (
	"errors"
	"fmt"
)

// ErrInvalidRotation is returned for a rotation other than left or right.
var ErrInvalidRotation = errors.New("invalid rotation")

// Surface is the part of a canvas the cursor paints on. The cursor never
// owns its surface.
type Surface interface {
	Width() int
	Height() int
	Draw(row, col int)
	Erase(row, col int)
}

// State is the cursor's initial placement.
type State struct {
	Row     int
	Col     int
	Heading Heading
	Brush   BrushMode
}

// Cursor is bound to a single Surface for its whole life. Row stays within
// [0, height-1] and Col within [0, width-1].
type Cursor struct {
	surface Surface
	row     int
	col     int
	heading Heading
	brush   BrushMode
}

// New binds a cursor to surface at the given start state.
func New(surface Surface, start State) (*Cursor, error) {
	if surface == nil {
		return nil, errors.New("surface is required")
	}
	if start.Row < 0 || start.Row >= surface.Height() || start.Col < 0 || start.Col >= surface.Width() {
		return nil, fmt.Errorf("start position (%d,%d) outside %dx%d canvas",
			start.Row, start.Col, surface.Width(), surface.Height())
	}
	if !start.Heading.Valid() {
		return nil, fmt.Errorf("invalid start heading %d: must be a multiple of %d in [0,360)", start.Heading, HeadingStep)
	}
	if !start.Brush.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBrushMode, start.Brush)
	}

	return &Cursor{
		surface: surface,
		row:     start.Row,
		col:     start.Col,
		heading: start.Heading,
		brush:   start.Brush,
	}, nil
}

// Row returns the current row.
func (c *Cursor) Row() int { return c.row }

// Col returns the current column.
func (c *Cursor) Col() int { return c.col }

// Heading returns the current heading.
func (c *Cursor) Heading() Heading { return c.heading }

// BrushMode returns the current brush mode.
func (c *Cursor) BrushMode() BrushMode { return c.brush }

// Coordinates formats the position as "(row,col)" with no spaces.
func (c *Cursor) Coordinates() string {
	return fmt.Sprintf("(%d,%d)", c.row, c.col)
}

// Rotate turns the cursor n steps of 45 degrees. Right is clockwise; left is
// right by -n.
func (c *Cursor) Rotate(direction Rotation, n int) error {
	switch direction {
	case Right:
		c.heading = c.heading.Turn(n)
	case Left:
		c.heading = c.heading.Turn(-n)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRotation, direction)
	}
	return nil
}

// SetBrushMode changes the brush. Unknown modes are rejected and leave the
// current mode in place.
func (c *Cursor) SetBrushMode(mode BrushMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidBrushMode, mode)
	}
	c.brush = mode
	return nil
}

// Move advances up to n steps along the heading. Each iteration applies the
// brush to the current cell and then steps. A component of the step that
// would leave the canvas is dropped; once a step changes nothing the cursor
// is against the edge and the move stops. It returns the number of steps
// that changed the position.
func (c *Cursor) Move(n int) int {
	d := directions[c.heading]
	moved := 0

	for ; n > 0; n-- {
		c.paint()

		row := clamp(c.row, d.row, c.surface.Height()-1)
		col := clamp(c.col, d.col, c.surface.Width()-1)
		if row == c.row && col == c.col {
			break
		}
		c.row, c.col = row, col
		moved++
	}
	return moved
}

func (c *Cursor) paint() {
	switch c.brush {
	case Draw:
		c.surface.Draw(c.row, c.col)
	case Eraser:
		c.surface.Erase(c.row, c.col)
	}
}

// clamp returns pos+step, or pos unchanged if that would fall outside [0, limit].
func clamp(pos, step, limit int) int {
	next := pos + step
	if next < 0 || next > limit {
		return pos
	}
	return next
}
