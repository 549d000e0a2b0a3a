package gfxhal

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gfxhal/pipeline"
	"github.com/gogpu/gfxhal/settings"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for gfxhal and all its sub-packages.
// By default, gfxhal produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by gfxhal:
//   - [slog.LevelDebug]: per-pipeline construction details
//   - [slog.LevelInfo]: lifecycle events (device opened, settings finalized)
//   - [slog.LevelWarn]: non-fatal issues (unknown Gfx11 part, registrar
//     failure, batch stopped early)
//
// Example:
//
//	gfxhal.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	settings.SetLogger(l)
	pipeline.SetLogger(l)
}

// Logger returns the current logger used by gfxhal.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
