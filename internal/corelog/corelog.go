// Package corelog provides the structured logger used across every component.
package corelog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Fields is a structured set of key/value pairs attached to a log line.
type Fields map[string]any

// Logger is the minimal structured-logging surface consumed by the core.
// A zerolog.Logger satisfies it; tests may supply a recording fake.
type Logger interface {
	Info(msg string, fields Fields)
	Error(msg string, fields Fields)
	Debug(msg string, fields Fields)
}

// Zerolog wraps a zerolog.Logger to satisfy Logger.
type Zerolog struct {
	base zerolog.Logger
}

// New constructs a Zerolog logger writing JSON lines to w at the given level
// ("debug", "info", "error", ...). An empty level defaults to "info".
func New(w io.Writer, level string) Zerolog {
	if w == nil {
		w = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	base := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return Zerolog{base: base}
}

func (z Zerolog) with(fields Fields) zerolog.Context {
	ctx := z.base.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return ctx
}

func (z Zerolog) Info(msg string, fields Fields) {
	z.with(fields).Logger().Info().Msg(msg)
}

func (z Zerolog) Error(msg string, fields Fields) {
	z.with(fields).Logger().Error().Msg(msg)
}

func (z Zerolog) Debug(msg string, fields Fields) {
	z.with(fields).Logger().Debug().Msg(msg)
}

// Noop discards every log line; useful as a safe default for components
// constructed without an explicit logger.
type Noop struct{}

func (Noop) Info(string, Fields)  {}
func (Noop) Error(string, Fields) {}
func (Noop) Debug(string, Fields) {}

// Recording is an in-memory Logger used by tests to assert on emitted lines.
type Recording struct {
	Lines []Line
}

// Line is one recorded log entry.
type Line struct {
	Level  string
	Msg    string
	Fields Fields
	At     time.Time
}

func (r *Recording) Info(msg string, fields Fields)  { r.record("info", msg, fields) }
func (r *Recording) Error(msg string, fields Fields) { r.record("error", msg, fields) }
func (r *Recording) Debug(msg string, fields Fields) { r.record("debug", msg, fields) }

func (r *Recording) record(level, msg string, fields Fields) {
	r.Lines = append(r.Lines, Line{Level: level, Msg: msg, Fields: fields, At: time.Now()})
}
