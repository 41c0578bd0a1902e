// Package logging builds the process logger: a text handler for the terminal
// and an optional JSON log file, fanned out behind one level.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// Config selects the log sinks.
type Config struct {
	// Terminal receives human-readable text logs. Nil disables the leg; the
	// terminal player does this so logs do not corrupt the screen.
	Terminal io.Writer

	// File, when set, receives JSON logs. The file is appended to.
	File string

	// Verbose lowers the level to debug.
	Verbose bool
}

// Logger is a configured logger and the resources behind it.
type Logger struct {
	*slog.Logger

	level *slog.LevelVar
	file  *os.File
}

// New builds a logger from cfg. With no sinks the logger discards.
func New(cfg Config) (*Logger, error) {
	level := new(slog.LevelVar)
	if cfg.Verbose {
		level.Set(slog.LevelDebug)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if cfg.Terminal != nil {
		handlers = append(handlers, slog.NewTextHandler(cfg.Terminal, opts))
	}

	var file *os.File
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
	}

	if len(handlers) == 0 {
		handlers = append(handlers, slog.NewTextHandler(io.Discard, opts))
	}

	return &Logger{
		Logger: slog.New(slogmulti.Fanout(handlers...)),
		level:  level,
		file:   file,
	}, nil
}

// SetLevel changes the level of every sink.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Level returns the current level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
