package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes content to logo.yaml in a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Default(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), DefaultConfigFile))
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultCanvasWidth, cfg.Canvas.Width)
	assert.Equal(t, DefaultCanvasHeight, cfg.Canvas.Height)
	assert.Equal(t, 15, cfg.StartRow())
	assert.Equal(t, 15, cfg.StartCol())
	assert.Equal(t, 0, cfg.Cursor.Heading)
	assert.Equal(t, "draw", cfg.Cursor.Brush)
	assert.Nil(t, cfg.WebSocket)
	assert.False(t, cfg.Session.Diagnostics)
	assert.Equal(t, DefaultMaxConnections, cfg.Server.RateLimit.MaxConnections)
	assert.Equal(t, time.Minute, cfg.Server.RateLimit.Window)
}

func TestLoadConfig_ValidFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `server:
  host: 0.0.0.0
  port: 9000
  read_timeout: 30s
  rate_limit:
    max_connections: 5
    window: 10s
websocket:
  port: 9001
canvas:
  width: 40
  height: 20
cursor:
  row: 3
  col: 7
  heading: 135
  brush: eraser
session:
  diagnostics: true
log_level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5, cfg.Server.RateLimit.MaxConnections)
	assert.Equal(t, 10*time.Second, cfg.Server.RateLimit.Window)
	require.NotNil(t, cfg.WebSocket)
	assert.Equal(t, 9001, cfg.WebSocket.Port)
	assert.Equal(t, 40, cfg.Canvas.Width)
	assert.Equal(t, 20, cfg.Canvas.Height)
	assert.Equal(t, 3, cfg.StartRow())
	assert.Equal(t, 7, cfg.StartCol())
	assert.Equal(t, 135, cfg.Cursor.Heading)
	assert.Equal(t, "eraser", cfg.Cursor.Brush)
	assert.True(t, cfg.Session.Diagnostics)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_PartialFile(t *testing.T) {
	t.Parallel()

	// only the canvas width changes; the cursor centre follows it
	path := writeConfig(t, `canvas:
  width: 10
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Canvas.Width)
	assert.Equal(t, DefaultCanvasHeight, cfg.Canvas.Height)
	assert.Equal(t, 5, cfg.StartCol())
	assert.Equal(t, 15, cfg.StartRow())
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "canvas: [not, a, map")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"zero width", "canvas:\n  width: 0\n", "canvas.width"},
		{"negative height", "canvas:\n  height: -2\n", "canvas.height"},
		{"port too large", "server:\n  port: 70000\n", "server.port"},
		{"negative read timeout", "server:\n  read_timeout: -1s\n", "server.read_timeout"},
		{"ws port negative", "websocket:\n  port: -1\n", "websocket.port"},
		{"row outside", "cursor:\n  row: 30\n", "cursor.row"},
		{"col outside", "canvas:\n  width: 4\ncursor:\n  col: 4\n", "cursor.col"},
		{"off-compass heading", "cursor:\n  heading: 30\n", "cursor.heading"},
		{"full-turn heading", "cursor:\n  heading: 360\n", "cursor.heading"},
		{"unknown brush", "cursor:\n  brush: erase\n", "cursor.brush"},
		{"unknown log level", "log_level: loud\n", "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			require.True(t, IsValidationError(err), "expected validation error, got %v", err)

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLoadConfig_ReadError(t *testing.T) {
	t.Parallel()

	// a directory cannot be read as a file
	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
	assert.False(t, IsValidationError(err))
}

func TestValidateConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.NoError(t, ValidateConfig(&cfg))
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := ValidationError{Field: "canvas.width", Message: "must be positive"}
	assert.Equal(t, "validation error: canvas.width: must be positive", err.Error())
}
