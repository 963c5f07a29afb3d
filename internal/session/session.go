// Package session implements the per-connection interpreter of the logo
// protocol. A Session owns one canvas and one cursor, reads CRLF-terminated
// command lines, and writes the replies for coord and render.
//
// Sessions share nothing. A connection's lines are handled strictly in order:
// each reply is fully written before the next line is read, and the line read
// is the only place a session blocks.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/thruflo/logo/internal/canvas"
	"github.com/thruflo/logo/internal/command"
	"github.com/thruflo/logo/internal/config"
	"github.com/thruflo/logo/internal/cursor"
	"github.com/thruflo/logo/internal/logging"
)

// Greeting is written once when a session starts.
const Greeting = "hello" + canvas.LineEnding

// ErrEnded is returned when a session that has ended is asked to do more work.
var ErrEnded = errors.New("session ended")

// State is the lifecycle phase of a session.
type State int

// Session states. Ended is terminal.
const (
	Starting State = iota
	Active
	Ended
)

var stateNames = map[State]string{
	Starting: "starting",
	Active:   "active",
	Ended:    "ended",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options configures a new session.
type Options struct {
	// ID identifies the session in logs. A random UUID is used when empty.
	ID string

	Width  int
	Height int
	Start  cursor.State

	// Diagnostics makes malformed or rejected commands reply "error: <reason>".
	Diagnostics bool

	Logger *logging.Logger
}

// OptionsFromConfig builds session options from the server configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	brush, err := cursor.ParseBrushMode(cfg.Cursor.Brush)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Width:  cfg.Canvas.Width,
		Height: cfg.Canvas.Height,
		Start: cursor.State{
			Row:     cfg.StartRow(),
			Col:     cfg.StartCol(),
			Heading: cursor.Heading(cfg.Cursor.Heading),
			Brush:   brush,
		},
		Diagnostics: cfg.Session.Diagnostics,
	}, nil
}

// Session is the interpreter state of one connection.
type Session struct {
	id          string
	state       State
	canvas      *canvas.Canvas
	cursor      *cursor.Cursor
	diagnostics bool
	log         *logging.Logger
}

// New allocates the canvas and cursor for a session in the Starting state.
func New(opts Options) (*Session, error) {
	c, err := canvas.New(opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to create canvas: %w", err)
	}

	cur, err := cursor.New(c, opts.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to create cursor: %w", err)
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Session{
		id:          id,
		state:       Starting,
		canvas:      c,
		cursor:      cur,
		diagnostics: opts.Diagnostics,
		log:         logger.With("session", id),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Canvas returns the session's canvas.
func (s *Session) Canvas() *canvas.Canvas { return s.canvas }

// Cursor returns the session's cursor.
func (s *Session) Cursor() *cursor.Cursor { return s.cursor }

// Start writes the greeting and moves the session to Active.
func (s *Session) Start(w io.Writer) error {
	if s.state == Ended {
		return ErrEnded
	}
	if s.state != Starting {
		return fmt.Errorf("cannot start session in state %s", s.state)
	}
	if _, err := io.WriteString(w, Greeting); err != nil {
		s.end("greeting failed")
		return fmt.Errorf("failed to write greeting: %w", err)
	}
	s.state = Active
	s.log.Info("session started")
	return nil
}

// Handle interprets one line and returns the bytes to send back, if any.
// A blank line or quit ends the session. Malformed or rejected commands are
// logged and leave the session Active.
func (s *Session) Handle(line string) []byte {
	if s.state != Active {
		return nil
	}

	cmd, err := command.Parse(line)
	if errors.Is(err, command.ErrEmpty) {
		s.end("end of input")
		return nil
	}

	s.log.Info("command received", "line", strings.TrimSpace(line))

	if err != nil {
		return s.reject(err)
	}

	switch cmd.Action {
	case command.ActionCoord:
		return []byte(s.cursor.Coordinates() + canvas.LineEnding)

	case command.ActionRender:
		block := s.canvas.Render()
		if s.log.Enabled(logging.LevelDebug) {
			s.log.Debug("canvas rendered\n" + block)
		}
		return []byte(block)

	case command.ActionSteps:
		s.cursor.Move(cmd.Argument)

	case command.ActionRight, command.ActionLeft:
		if err := s.cursor.Rotate(cursor.Rotation(cmd.Action), cmd.Argument); err != nil {
			return s.reject(err)
		}

	case command.ActionHover, command.ActionDraw, command.ActionEraser:
		mode, err := cursor.ParseBrushMode(cmd.Action)
		if err == nil {
			err = s.cursor.SetBrushMode(mode)
		}
		if err != nil {
			return s.reject(err)
		}

	case command.ActionQuit:
		s.end("quit")

	default:
		// unknown commands are ignored without a reply
	}

	return nil
}

// Run starts the session on w and handles lines from r until the client
// quits, sends a blank line, or the stream ends. Cancelling ctx is observed
// between lines; the transport closes the connection to interrupt a read.
// A clean end returns nil.
func (s *Session) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	if err := s.Start(w); err != nil {
		return err
	}

	reader := bufio.NewReader(r)
	for s.state == Active {
		if err := ctx.Err(); err != nil {
			s.end("cancelled")
			return nil
		}

		line, readErr := reader.ReadString('\n')
		if line != "" {
			if reply := s.Handle(line); len(reply) > 0 {
				if _, err := w.Write(reply); err != nil {
					s.end("write failed")
					return fmt.Errorf("failed to write reply: %w", err)
				}
			}
		}

		if readErr != nil {
			if s.state == Ended {
				return nil
			}
			s.end("connection closed")
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read command: %w", readErr)
		}
	}

	return nil
}

func (s *Session) reject(err error) []byte {
	s.log.Warn("command rejected", "error", err)
	if !s.diagnostics {
		return nil
	}
	return []byte("error: " + err.Error() + canvas.LineEnding)
}

func (s *Session) end(reason string) {
	if s.state == Ended {
		return
	}
	s.state = Ended
	s.log.Info("session ended", "reason", reason)
}
