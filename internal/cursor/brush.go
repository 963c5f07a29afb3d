package cursor

import (
	"errors"
	"fmt"
)

// ErrInvalidBrushMode is returned for a brush mode outside hover/draw/eraser.
var ErrInvalidBrushMode = errors.New("invalid brush mode")

// BrushMode controls what a move does to the cells the cursor leaves.
type BrushMode int

// Brush modes.
const (
	Hover BrushMode = iota
	Draw
	Eraser
)

var brushNames = map[BrushMode]string{
	Hover:  "hover",
	Draw:   "draw",
	Eraser: "eraser",
}

// ParseBrushMode converts a protocol token into a BrushMode.
func ParseBrushMode(s string) (BrushMode, error) {
	for mode, name := range brushNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (must be one of: hover, draw, eraser)", ErrInvalidBrushMode, s)
}

// Valid reports whether m is a known brush mode.
func (m BrushMode) Valid() bool {
	_, ok := brushNames[m]
	return ok
}

func (m BrushMode) String() string {
	if name, ok := brushNames[m]; ok {
		return name
	}
	return fmt.Sprintf("BrushMode(%d)", int(m))
}

// IsBrushMode reports whether s names a brush mode.
func IsBrushMode(s string) bool {
	_, err := ParseBrushMode(s)
	return err == nil
}
