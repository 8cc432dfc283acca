package commands

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/erraggy/specflat/loader"
)

// zerologAdapter implements loader.Logger on a zerolog.Logger.
type zerologAdapter struct {
	logger zerolog.Logger
}

// NewLogger returns a logger writing to w. Console output is the default;
// asJSON writes one JSON object per line. Only errors are logged unless
// verbose is set, which enables debug output.
func NewLogger(w io.Writer, verbose, asJSON bool) loader.Logger {
	level := zerolog.ErrorLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := w
	if !asJSON {
		out = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.Kitchen}
	}
	return &zerologAdapter{logger: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

// Debug logs at debug level
func (a *zerologAdapter) Debug(msg string, attrs ...any) {
	a.logger.Debug().Fields(attrs).Msg(msg)
}

// Info logs at info level
func (a *zerologAdapter) Info(msg string, attrs ...any) {
	a.logger.Info().Fields(attrs).Msg(msg)
}

// Warn logs at warn level
func (a *zerologAdapter) Warn(msg string, attrs ...any) {
	a.logger.Warn().Fields(attrs).Msg(msg)
}

// Error logs at error level
func (a *zerologAdapter) Error(msg string, attrs ...any) {
	a.logger.Error().Fields(attrs).Msg(msg)
}

// With returns a logger with the given attributes attached
func (a *zerologAdapter) With(attrs ...any) loader.Logger {
	return &zerologAdapter{logger: a.logger.With().Fields(attrs).Logger()}
}
