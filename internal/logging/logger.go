// Package logging provides the leveled key/value logger used by the logo
// server. Every connection gets a child logger carrying its session and remote
// address so the console shows which client sent which command.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
)

// Level represents a log level.
type Level int

const (
	// LevelDebug is for verbose output such as rendered canvases.
	LevelDebug Level = iota
	// LevelInfo is for connection lifecycle and received commands.
	LevelInfo
	// LevelWarn is for recoverable errors such as malformed commands.
	LevelWarn
	// LevelError is for failures that end a connection or the server.
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel converts a case-insensitive level name into a Level.
func ParseLevel(s string) (Level, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	if want == "WARNING" {
		want = "WARN"
	}
	for level, name := range levelNames {
		if name == want {
			return level, nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger provides structured logging with context.
type Logger struct {
	mu       *sync.RWMutex
	minLevel *Level
	fields   map[string]interface{}
	output   **log.Logger
}

var defaultLogger = New()

// New creates a Logger writing to stderr at info level.
func New() *Logger {
	return NewWithWriter(os.Stderr, LevelInfo)
}

// NewWithWriter creates a Logger writing to w at the given level.
func NewWithWriter(w io.Writer, level Level) *Logger {
	output := log.New(w, "", log.LstdFlags)
	return &Logger{
		mu:       &sync.RWMutex{},
		minLevel: &level,
		fields:   make(map[string]interface{}),
		output:   &output,
	}
}

// SetLevel sets the minimum log level. Child loggers created with With share
// the setting.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.minLevel = level
}

// SetOutput sets the output logger, shared with child loggers.
func (l *Logger) SetOutput(output *log.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.output = output
}

// With returns a new Logger with an additional context field.
func (l *Logger) With(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a new Logger with multiple additional context fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &Logger{
		mu:       l.mu,
		minLevel: l.minLevel,
		fields:   newFields,
		output:   l.output,
	}
}

// Enabled reports whether a message at level would be written.
func (l *Logger) Enabled(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= *l.minLevel
}

func (l *Logger) log(level Level, msg string, keyVals ...interface{}) {
	l.mu.RLock()
	minLevel := *l.minLevel
	output := *l.output
	l.mu.RUnlock()

	if level < minLevel {
		return
	}

	all := make(map[string]interface{}, len(l.fields)+len(keyVals)/2)
	for k, v := range l.fields {
		all[k] = v
	}
	for i := 0; i+1 < len(keyVals); i += 2 {
		if key, ok := keyVals[i].(string); ok {
			all[key] = keyVals[i+1]
		}
	}

	var sb strings.Builder
	sb.WriteString(levelNames[level])
	sb.WriteString(": ")
	sb.WriteString(msg)

	if len(all) > 0 {
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(" |")
		for _, k := range keys {
			sb.WriteString(" ")
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(formatValue(all[k]))
		}
	}

	output.Print(sb.String())
}

// formatValue quotes strings containing whitespace and errors.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\r\n") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case error:
		return fmt.Sprintf("%q", val.Error())
	default:
		return fmt.Sprint(v)
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keyVals ...interface{}) {
	l.log(LevelDebug, msg, keyVals...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, keyVals ...interface{}) {
	l.log(LevelInfo, msg, keyVals...)
}

// Warn logs at warn level (for recoverable errors).
func (l *Logger) Warn(msg string, keyVals ...interface{}) {
	l.log(LevelWarn, msg, keyVals...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, keyVals ...interface{}) {
	l.log(LevelError, msg, keyVals...)
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// SetOutput sets the output for the default logger.
func SetOutput(output *log.Logger) {
	defaultLogger.SetOutput(output)
}

// With returns a child of the default logger with an additional field.
func With(key string, value interface{}) *Logger {
	return defaultLogger.With(key, value)
}

// Info logs at info level using the default logger.
func Info(msg string, keyVals ...interface{}) {
	defaultLogger.Info(msg, keyVals...)
}

// Warn logs at warn level using the default logger.
func Warn(msg string, keyVals ...interface{}) {
	defaultLogger.Warn(msg, keyVals...)
}

// Error logs at error level using the default logger.
func Error(msg string, keyVals ...interface{}) {
	defaultLogger.Error(msg, keyVals...)
}
