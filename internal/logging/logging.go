// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"

	// FileName is the log file written into the user-data logs directory
	// when debug.logs is on.
	FileName = "appshell.log"
)

type Options struct {
	Out    io.Writer
	Format string
	Level  string
	// File, when set, also receives every event as JSON lines.
	File string
}

// New returns the logger and a func that closes the log file, if any.
func New(opts Options) (zerolog.Logger, func() error, error) {
	nop := func() error { return nil }

	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), nop, fmt.Errorf("parse log level: %w", err)
		}
		level = l
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.Format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	closeFn := nop
	if opts.File != "" {
		f, err := openFile(opts.File)
		if err != nil {
			return zerolog.Nop(), nop, err
		}
		out = zerolog.MultiLevelWriter(out, f)
		closeFn = f.Close
	}

	log := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
	return log, closeFn, nil
}

func openFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
