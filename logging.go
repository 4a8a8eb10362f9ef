package simrt

import (
	"io"
	"log/slog"

	"github.com/joeycumines/logiface"
	logifaceslog "github.com/joeycumines/logiface-slog"
)

// Field is a single structured logging attribute.
type Field struct {
	Key   string
	Value any
}

// F constructs a Field. Used at every call site that logs runtime
// diagnostics: task lifecycle, fault injection decisions, time
// advancement, and network events.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is the structured logging sink consulted by the runtime. It is
// deliberately narrow — the four standard severities plus structured
// fields — mirroring eventloop.Logger's Debug/Info/Warn/Error split,
// but backed by logiface rather than a hand-rolled implementation, per
// this module's ambient-stack policy of never reimplementing a concern
// the teacher's ecosystem already has a library for.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// noopLogger discards everything. It is the default when WithLogger is
// not supplied, the same role NewNoOpLogger plays in eventloop.
type noopLogger struct{}

func (noopLogger) Debug(string, ...Field) {}
func (noopLogger) Info(string, ...Field)  {}
func (noopLogger) Warn(string, ...Field)  {}
func (noopLogger) Error(string, ...Field) {}

// slogLogger adapts a *logiface.Logger[*logifaceslog.Event] (itself
// backed by log/slog) to the Logger interface.
type slogLogger struct {
	l *logiface.Logger[*logifaceslog.Event]
}

// NewSlogLogger builds a Logger that writes structured, leveled JSON log
// lines to w via log/slog, through logiface's generic event builder.
func NewSlogLogger(w io.Writer) Logger {
	handler := slog.NewJSONHandler(w, nil)
	return &slogLogger{
		l: logiface.New[*logifaceslog.Event](logifaceslog.NewLogger(handler)),
	}
}

func apply[E logiface.Event](b *logiface.Builder[E], fields []Field) *logiface.Builder[E] {
	for _, f := range fields {
		b = b.Any(f.Key, f.Value)
	}
	return b
}

func (s *slogLogger) Debug(msg string, fields ...Field) { apply(s.l.Debug(), fields).Log(msg) }
func (s *slogLogger) Info(msg string, fields ...Field)  { apply(s.l.Info(), fields).Log(msg) }
func (s *slogLogger) Warn(msg string, fields ...Field)  { apply(s.l.Warning(), fields).Log(msg) }
func (s *slogLogger) Error(msg string, fields ...Field) { apply(s.l.Err(), fields).Log(msg) }
