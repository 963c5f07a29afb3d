package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContextWithTestDeadline_HasDeadline(t *testing.T) {
	fallback := 100 * time.Millisecond
	ctx, cancel := ContextWithTestDeadline(t, fallback)
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok, "context should have deadline")
	assert.LessOrEqual(t, time.Until(deadline), fallback)
	assert.Greater(t, time.Until(deadline), time.Duration(0))
}

func TestShortOperationContext(t *testing.T) {
	ctx, cancel := ShortOperationContext(t)
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.LessOrEqual(t, time.Until(deadline), DefaultShortTimeout)
}

func TestScript(t *testing.T) {
	assert.Equal(t, "", Script())
	assert.Equal(t, "coord\r\n", Script("coord"))
	assert.Equal(t, "steps 1\r\ncoord\r\nrender\r\n", Script(ScenarioStepUp...))
}

func TestAssertFrame(t *testing.T) {
	block := "╔══╗\r\n" +
		"║* ║\r\n" +
		"║  ║\r\n" +
		"║ *║\r\n" +
		"╚══╝\r\n" +
		"\r\n"

	interior := AssertFrame(t, block, 2, 3)
	assert.Len(t, interior, 3)
	AssertOnlyInked(t, interior, Cell{Row: 0, Col: 0}, Cell{Row: 2, Col: 1})
}

func TestAssertInteriorBlank(t *testing.T) {
	AssertInteriorBlank(t, [][]rune{[]rune("   "), []rune("   ")})
}
