package logging

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// teeHandler writes each record to every handler whose level admits it. The
// console and the log file keep independent levels this way.
type teeHandler struct {
	handlers []slog.Handler
}

// TeeHandler duplicates records across handlers. Nil handlers are dropped; a
// single survivor is returned as is and none yields a NoopHandler.
func TeeHandler(handlers ...slog.Handler) slog.Handler {
	live := slices.DeleteFunc(slices.Clone(handlers), func(h slog.Handler) bool { return h == nil })
	switch len(live) {
	case 0:
		return NoopHandler{}
	case 1:
		return live[0]
	}
	return teeHandler{handlers: live}
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(t.handlers, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range t.handlers {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) each(fn func(slog.Handler) slog.Handler) teeHandler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = fn(h)
	}
	return teeHandler{handlers: next}
}
