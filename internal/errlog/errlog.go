// Package errlog maintains the persistent error log: a text file that
// records load failures with a timestamp and message. The file is
// opened once per process, not once per load.
package errlog

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Open appends to the error log at path and returns a logger whose
// records land there. The returned closer must be closed when the
// process is done with the log.
func Open(path string) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler), f, nil
}

// Tee returns a logger that sends every record to console and
// additionally persists Error-level records through errorLog.
func Tee(console, errorLog *slog.Logger) *slog.Logger {
	return slog.New(&teeHandler{console: console.Handler(), errors: errorLog.Handler()})
}

type teeHandler struct {
	console slog.Handler
	errors  slog.Handler
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.errors.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, rec slog.Record) error {
	var err error
	if h.console.Enabled(ctx, rec.Level) {
		err = h.console.Handle(ctx, rec.Clone())
	}
	if h.errors.Enabled(ctx, rec.Level) {
		if e := h.errors.Handle(ctx, rec.Clone()); err == nil {
			err = e
		}
	}
	return err
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{console: h.console.WithAttrs(attrs), errors: h.errors.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{console: h.console.WithGroup(name), errors: h.errors.WithGroup(name)}
}
