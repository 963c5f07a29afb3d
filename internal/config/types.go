package config

import "time"

// RateLimit bounds how many connections one IP may open per window.
type RateLimit struct {
	MaxConnections int           `yaml:"max_connections"`
	Window         time.Duration `yaml:"window"`
}

// ServerConfig configures the TCP listener.
type ServerConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	RateLimit   RateLimit     `yaml:"rate_limit"`
}

// WebSocketConfig enables the optional WebSocket transport.
type WebSocketConfig struct {
	Port int `yaml:"port"`
}

// CanvasConfig sets the interior grid size of every session.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CursorConfig sets where every session's cursor starts. A negative row or
// column means the centre of the canvas.
type CursorConfig struct {
	Row     int    `yaml:"row"`
	Col     int    `yaml:"col"`
	Heading int    `yaml:"heading"`
	Brush   string `yaml:"brush"`
}

// SessionConfig tunes the per-connection interpreter.
type SessionConfig struct {
	Diagnostics bool `yaml:"diagnostics"`
}

// Config represents the logo.yaml file.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	WebSocket *WebSocketConfig `yaml:"websocket,omitempty"`
	Canvas    CanvasConfig     `yaml:"canvas"`
	Cursor    CursorConfig     `yaml:"cursor"`
	Session   SessionConfig    `yaml:"session"`
	LogLevel  string           `yaml:"log_level"`
}

// StartRow resolves the cursor's starting row against the canvas height.
func (c *Config) StartRow() int {
	if c.Cursor.Row < 0 {
		return c.Canvas.Height / 2
	}
	return c.Cursor.Row
}

// StartCol resolves the cursor's starting column against the canvas width.
func (c *Config) StartCol() int {
	if c.Cursor.Col < 0 {
		return c.Canvas.Width / 2
	}
	return c.Cursor.Col
}
