package observability

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Development output is human readable, everything else is JSON.
func NewLogger(w io.Writer, appName, level string, development bool) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := w
	if development {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(parsed).With().Timestamp().Str("app", appName).Logger(), nil
}
