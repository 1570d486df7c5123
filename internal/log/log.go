// Package log provides the logging infrastructure shared by all lagoon
// components.
//
// Loggers are plain *slog.Logger values injected through constructors rather
// than reached for via globals. Each component derives its own logger with
// logger.With("component", ...) so the origin of every line is visible:
//
//	logger := log.New(log.Config{Level: slog.LevelDebug})
//	client := api.New(cfg, logger.With("component", "api"))
//	comp := composer.New(composer.Config{
//	    Logger: logger.With("component", "composer"),
//	    ...
//	})
//
// Tests use NewNop to silence output, or NewWithWriter with a bytes.Buffer
// to assert on it.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a type alias for *slog.Logger. Components take log.Logger as a
// dependency; the alias keeps full compatibility with the slog ecosystem
// without a wrapper interface.
type Logger = *slog.Logger

// Config defines logger configuration options.
type Config struct {
	// Level sets the minimum log level. Default: slog.LevelInfo
	Level slog.Level

	// JSON enables JSON format output. Default: false (text format)
	JSON bool

	// AddSource adds source file information to log entries. Default: false
	AddSource bool
}

// New creates a logger writing to os.Stderr. Stderr keeps log output out of
// the terminal UI, which owns stdout.
func New(cfg Config) Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a logger that writes to the given writer.
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewNop creates a logger that discards all output. Test use only; production
// code should always configure a real writer.
func NewNop() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
