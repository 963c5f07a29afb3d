package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for Config.
const (
	DefaultConfigFile     = "logo.yaml"
	DefaultHost           = "localhost"
	DefaultPort           = 8124
	DefaultWebSocketPort  = 8125
	DefaultCanvasWidth    = 30
	DefaultCanvasHeight   = 30
	DefaultHeading        = 0
	DefaultBrush          = "draw"
	DefaultLogLevel       = "info"
	DefaultMaxConnections = 30
	DefaultRateWindow     = time.Minute
)

var validBrushes = []string{"hover", "draw", "eraser"}
var validLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// DefaultServerConfig returns a ServerConfig with sensible default values.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host: DefaultHost,
		Port: DefaultPort,
		RateLimit: RateLimit{
			MaxConnections: DefaultMaxConnections,
			Window:         DefaultRateWindow,
		},
	}
}

// DefaultConfig returns the reference configuration: a 30x30 canvas with the
// cursor at its centre, heading up, drawing.
func DefaultConfig() Config {
	return Config{
		Server: DefaultServerConfig(),
		Canvas: CanvasConfig{
			Width:  DefaultCanvasWidth,
			Height: DefaultCanvasHeight,
		},
		Cursor: CursorConfig{
			Row:     -1,
			Col:     -1,
			Heading: DefaultHeading,
			Brush:   DefaultBrush,
		},
		LogLevel: DefaultLogLevel,
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// LoadConfig reads and parses the YAML file at path over the defaults.
// If the file doesn't exist, returns the default config.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if err := ValidateServerConfig(&cfg.Server); err != nil {
		return err
	}

	if cfg.WebSocket != nil {
		if cfg.WebSocket.Port < 0 || cfg.WebSocket.Port > 65535 {
			return ValidationError{Field: "websocket.port", Message: "must be between 0 and 65535"}
		}
	}

	if cfg.Canvas.Width <= 0 {
		return ValidationError{Field: "canvas.width", Message: "must be positive"}
	}
	if cfg.Canvas.Height <= 0 {
		return ValidationError{Field: "canvas.height", Message: "must be positive"}
	}

	if cfg.StartRow() >= cfg.Canvas.Height {
		return ValidationError{Field: "cursor.row", Message: "must be inside the canvas"}
	}
	if cfg.StartCol() >= cfg.Canvas.Width {
		return ValidationError{Field: "cursor.col", Message: "must be inside the canvas"}
	}
	if cfg.Cursor.Heading < 0 || cfg.Cursor.Heading >= 360 || cfg.Cursor.Heading%45 != 0 {
		return ValidationError{Field: "cursor.heading", Message: "must be a multiple of 45 in [0,360)"}
	}
	if !contains(validBrushes, cfg.Cursor.Brush) {
		return ValidationError{Field: "cursor.brush", Message: "must be one of: " + strings.Join(validBrushes, ", ")}
	}

	if !contains(validLogLevels, strings.ToLower(cfg.LogLevel)) {
		return ValidationError{Field: "log_level", Message: "must be one of: debug, info, warn, error"}
	}

	return nil
}

// ValidateServerConfig checks that server config values are valid.
func ValidateServerConfig(cfg *ServerConfig) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return ValidationError{Field: "server.port", Message: "must be between 0 and 65535"}
	}
	if cfg.ReadTimeout < 0 {
		return ValidationError{Field: "server.read_timeout", Message: "must not be negative"}
	}
	if cfg.RateLimit.MaxConnections < 0 {
		return ValidationError{Field: "server.rate_limit.max_connections", Message: "must not be negative"}
	}
	if cfg.RateLimit.Window < 0 {
		return ValidationError{Field: "server.rate_limit.window", Message: "must not be negative"}
	}
	return nil
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
