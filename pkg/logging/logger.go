// Package logging configures structured logging with zerolog.
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// Setup builds the root logger. Unknown or empty levels fall back to info.
// With pretty enabled, output is human-readable console format instead of JSON.
func Setup(level string, out io.Writer, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).With().Timestamp().Logger().Level(lvl)
}
