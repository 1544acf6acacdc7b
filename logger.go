// Package shadercanvas renders a user-authored fragment shader as a
// full-screen background composited into a host's OpenGL frame.
//
// The work is split across sub-packages: shader patches source text,
// renderer compiles programs and draws them through an offscreen canvas,
// and background schedules compiles onto the render goroutine.
package shadercanvas

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger shared by shadercanvas and all of its
// sub-packages. By default nothing is logged. Pass nil to restore the
// silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: scheduler transitions, deferred compiles
//   - [slog.LevelInfo]: successful compiles, resource lifecycle
//   - [slog.LevelWarn]: compatibility rewrites, fallbacks
//   - [slog.LevelError]: compile/link diagnostics, render failures
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
