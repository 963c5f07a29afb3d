package cursor

import "fmt"

// Heading is a compass direction in degrees: 0 is up, increasing clockwise
// in steps of 45. A valid heading is a multiple of 45 in [0, 360).
type Heading int

// Compass headings.
const (
	North     Heading = 0
	NorthEast Heading = 45
	East      Heading = 90
	SouthEast Heading = 135
	South     Heading = 180
	SouthWest Heading = 225
	West      Heading = 270
	NorthWest Heading = 315
)

// HeadingStep is the rotation applied by one unit of "left" or "right".
const HeadingStep = 45

// delta is a (row, col) unit vector.
type delta struct {
	row, col int
}

// directions maps every heading to its unit step.
var directions = map[Heading]delta{
	North:     {-1, 0},
	NorthEast: {-1, 1},
	East:      {0, 1},
	SouthEast: {1, 1},
	South:     {1, 0},
	SouthWest: {1, -1},
	West:      {0, -1},
	NorthWest: {-1, -1},
}

// Valid reports whether h is one of the eight compass headings.
func (h Heading) Valid() bool {
	_, ok := directions[h]
	return ok
}

// Turn returns h rotated clockwise by steps*45 degrees, normalized into
// [0, 360). Negative steps rotate counter-clockwise.
func (h Heading) Turn(steps int) Heading {
	// reduce steps first so the product cannot overflow for huge arguments
	turns := steps % (360 / HeadingStep)
	next := (int(h) + turns*HeadingStep) % 360
	if next < 0 {
		next += 360
	}
	return Heading(next)
}

func (h Heading) String() string {
	return fmt.Sprintf("%d°", int(h))
}

// Rotation is a turning direction.
type Rotation string

// Rotations accepted by Cursor.Rotate.
const (
	Left  Rotation = "left"
	Right Rotation = "right"
)
