// Package command turns one protocol line into a structured Command.
package command

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

var (
	// ErrEmpty is returned for a line with no content.
	ErrEmpty = errors.New("empty command")
	// ErrMalformed is returned for a line that is not "<action>" or "<action> <int>".
	ErrMalformed = errors.New("malformed command")
)

// DefaultArgument is used when a command carries no argument.
const DefaultArgument = 1

// turnsPerCircle is the number of 45 degree turns in a full rotation.
const turnsPerCircle = 8

// Protocol actions.
const (
	ActionCoord  = "coord"
	ActionRender = "render"
	ActionSteps  = "steps"
	ActionRight  = "right"
	ActionLeft   = "left"
	ActionHover  = "hover"
	ActionDraw   = "draw"
	ActionEraser = "eraser"
	ActionQuit   = "quit"
)

// Command is one parsed client request.
type Command struct {
	Action   string
	Argument int
}

func (c Command) String() string {
	return fmt.Sprintf("%s %d", c.Action, c.Argument)
}

// Parse splits line on its first space. A single token is an action with the
// default argument; two tokens are an action and a base-10 integer of any
// size (see outOfRange). Surrounding
// whitespace, including the CRLF terminator, is ignored. Anything else wraps
// ErrMalformed.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, ErrEmpty
	}

	action, arg, found := strings.Cut(line, " ")
	if !found {
		return Command{Action: action, Argument: DefaultArgument}, nil
	}

	if strings.Contains(arg, " ") {
		return Command{}, fmt.Errorf("%w: %q: expected at most one argument", ErrMalformed, line)
	}

	n, err := strconv.Atoi(arg)
	if errors.Is(err, strconv.ErrRange) {
		n, err = outOfRange(action, arg)
	}
	if err != nil {
		return Command{}, fmt.Errorf("%w: %q: argument must be an integer", ErrMalformed, line)
	}

	return Command{Action: action, Argument: n}, nil
}

// outOfRange maps an integer that does not fit in an int onto one with the
// same effect. Turn counts are reduced modulo a full circle, keeping their
// sign; every other argument saturates.
func outOfRange(action, arg string) (int, error) {
	v, ok := new(big.Int).SetString(arg, 10)
	if !ok {
		return 0, strconv.ErrSyntax
	}

	switch action {
	case ActionRight, ActionLeft:
		return int(new(big.Int).Rem(v, big.NewInt(turnsPerCircle)).Int64()), nil
	}

	if v.Sign() < 0 {
		return math.MinInt, nil
	}
	return math.MaxInt, nil
}
