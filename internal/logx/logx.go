// Package logx sets up the process logger.
package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Setup returns a console logger at the given level; unknown levels fall
// back to info.
func Setup(level string) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr}, level)
}

// New builds a logger over the given writer.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
