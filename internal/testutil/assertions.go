package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cell addresses one interior grid cell.
type Cell struct {
	Row int
	Col int
}

// AssertFrame checks that block is a rendered canvas of the given interior
// size: height+2 CRLF-terminated rows of width+2 runes, double-line corners
// and edges, and one trailing blank line. It returns the interior rows.
func AssertFrame(t *testing.T, block string, width, height int) [][]rune {
	t.Helper()

	require.True(t, strings.HasSuffix(block, "\r\n\r\n"), "block must end with a blank CRLF line")

	lines := strings.Split(strings.TrimSuffix(block, "\r\n\r\n"), "\r\n")
	require.Len(t, lines, height+2, "frame row count")

	rows := make([][]rune, len(lines))
	for i, line := range lines {
		rows[i] = []rune(line)
		require.Len(t, rows[i], width+2, "frame row %d width", i)
	}

	top, bottom := rows[0], rows[len(rows)-1]
	assert.Equal(t, '╔', top[0], "top-left corner")
	assert.Equal(t, '╗', top[width+1], "top-right corner")
	assert.Equal(t, '╚', bottom[0], "bottom-left corner")
	assert.Equal(t, '╝', bottom[width+1], "bottom-right corner")
	for col := 1; col <= width; col++ {
		assert.Equal(t, '═', top[col], "top border col %d", col)
		assert.Equal(t, '═', bottom[col], "bottom border col %d", col)
	}

	interior := make([][]rune, height)
	for row := 0; row < height; row++ {
		line := rows[row+1]
		assert.Equal(t, '║', line[0], "left border row %d", row)
		assert.Equal(t, '║', line[width+1], "right border row %d", row)
		interior[row] = line[1 : width+1]
	}
	return interior
}

// AssertInteriorBlank asserts every interior cell is a space.
func AssertInteriorBlank(t *testing.T, interior [][]rune) {
	t.Helper()
	AssertOnlyInked(t, interior)
}

// AssertOnlyInked asserts that exactly the given cells hold '*' and every
// other cell is a space.
func AssertOnlyInked(t *testing.T, interior [][]rune, cells ...Cell) {
	t.Helper()

	inked := make(map[Cell]bool, len(cells))
	for _, c := range cells {
		inked[c] = true
	}

	for row := range interior {
		for col, glyph := range interior[row] {
			if inked[Cell{Row: row, Col: col}] {
				assert.Equal(t, '*', glyph, "cell (%d,%d) should be inked", row, col)
			} else {
				assert.Equal(t, ' ', glyph, "cell (%d,%d) should be blank", row, col)
			}
		}
	}
}
