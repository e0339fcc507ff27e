package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	Level      zerolog.Level
	Format     string // "json" or "console"
	TimeFormat string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel,
		Format:     "console",
		TimeFormat: time.RFC3339,
	}
}

// New creates a zerolog logger with the given configuration.
func New(cfg Config) zerolog.Logger {
	var output io.Writer = os.Stderr

	switch cfg.Format {
	case "console":
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: cfg.TimeFormat,
		}
	case "json":
		// JSON is the default zerolog format
		output = os.Stderr
	}

	return zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// NewFromEnv creates a logger based on environment variables.
// WAYMARK_LOG_LEVEL: trace, debug, info, warn, error (default: info)
// WAYMARK_LOG_FORMAT: json, console (default: console)
func NewFromEnv() zerolog.Logger {
	cfg := DefaultConfig()

	if level := os.Getenv("WAYMARK_LOG_LEVEL"); level != "" {
		if parsed, err := ParseLevel(level); err == nil {
			cfg.Level = parsed
		}
	}
	if format := os.Getenv("WAYMARK_LOG_FORMAT"); format == "json" || format == "console" {
		cfg.Format = format
	}

	return New(cfg)
}

// ParseLevel maps a level name to its zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	return zerolog.ParseLevel(level)
}

// TruncateURL shortens a URL for log output, keeping the head and marking
// the cut.
func TruncateURL(url string, max int) string {
	if max <= 3 || len(url) <= max {
		return url
	}
	return url[:max-3] + "..."
}
