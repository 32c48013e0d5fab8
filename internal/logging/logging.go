package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ToFile returns a logger writing to the given path. The TUI owns the
// terminal, so interactive runs must not log to stdout/stderr.
func ToFile(path string) (zerolog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	logger := zerolog.New(f).With().Timestamp().Logger()
	return logger, f, nil
}

// ToConsole returns a logger for non-interactive subcommands.
func ToConsole() zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(w).With().Timestamp().Logger()
}
