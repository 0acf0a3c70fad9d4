// Package logging builds the zerolog logger shared by the service and carries it through
// request contexts.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aouyang1/go-tempcast/config"
	"github.com/rs/zerolog"
)

// New creates a logger from configuration. The returned closer releases a log file and is a
// no-op for stdout and stderr.
func New(cfg config.LoggingConfig) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	var closer io.Closer = nopCloser{}
	switch cfg.OutputPath {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		logDir := filepath.Dir(cfg.OutputPath)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
		file, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file %s: %w", cfg.OutputPath, err)
		}
		output = file
		closer = file
	}

	return NewWithWriter(output, level, cfg.Format, cfg.TimeFormat), closer, nil
}

// NewWithWriter creates a logger writing json, or console lines when format is "console"
func NewWithWriter(w io.Writer, level zerolog.Level, format, timeFormat string) zerolog.Logger {
	if format == "console" || format == "pretty" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: getTimeFormat(timeFormat),
		}
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// getTimeFormat converts string to time format
func getTimeFormat(format string) string {
	switch format {
	case "Unix":
		return time.UnixDate
	case "Kitchen":
		return time.Kitchen
	default:
		return time.RFC3339
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
