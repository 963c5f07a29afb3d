// Package canvas implements the fixed-size character grid that sessions draw
// on, and its framed text rendering.
package canvas

import (
	"fmt"
	"strings"
)

// Cell glyphs.
const (
	Blank = ' '
	Ink   = '*'
)

// Frame glyphs from the Unicode double-line box-drawing set.
const (
	TopLeft     = '╔'
	TopRight    = '╗'
	BottomLeft  = '╚'
	BottomRight = '╝'
	Horizontal  = '═'
	Vertical    = '║'
)

// LineEnding terminates every rendered row.
const LineEnding = "\r\n"

// Canvas is a width x height grid of cells. Every cell holds either Blank or Ink.
// It is not safe for concurrent use; a canvas belongs to a single session.
type Canvas struct {
	width  int
	height int
	cells  [][]rune // cells[row][col]
}

// New creates a blank canvas. Width and height must be positive.
func New(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d: dimensions must be positive", width, height)
	}

	cells := make([][]rune, height)
	for row := range cells {
		cells[row] = make([]rune, width)
		for col := range cells[row] {
			cells[row][col] = Blank
		}
	}

	return &Canvas{
		width:  width,
		height: height,
		cells:  cells,
	}, nil
}

// Width returns the number of columns.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the number of rows.
func (c *Canvas) Height() int {
	return c.height
}

// Draw inks the cell at (row, col). The caller keeps coordinates in bounds.
func (c *Canvas) Draw(row, col int) {
	c.cells[row][col] = Ink
}

// Erase blanks the cell at (row, col). The caller keeps coordinates in bounds.
func (c *Canvas) Erase(row, col int) {
	c.cells[row][col] = Blank
}

// At returns the glyph at (row, col).
func (c *Canvas) At(row, col int) rune {
	return c.cells[row][col]
}

// Render returns the grid wrapped in a double-line frame. Each of the
// height+2 frame rows ends with CRLF, and one extra CRLF follows the bottom
// border to mark the end of the block.
func (c *Canvas) Render() string {
	var sb strings.Builder
	// frame rows plus the terminating blank line, up to 3 bytes per glyph
	sb.Grow((c.height+2)*((c.width+2)*3+len(LineEnding)) + len(LineEnding))

	border := strings.Repeat(string(Horizontal), c.width)

	sb.WriteRune(TopLeft)
	sb.WriteString(border)
	sb.WriteRune(TopRight)
	sb.WriteString(LineEnding)

	for _, row := range c.cells {
		sb.WriteRune(Vertical)
		sb.WriteString(string(row))
		sb.WriteRune(Vertical)
		sb.WriteString(LineEnding)
	}

	sb.WriteRune(BottomLeft)
	sb.WriteString(border)
	sb.WriteRune(BottomRight)
	sb.WriteString(LineEnding)

	sb.WriteString(LineEnding)
	return sb.String()
}
