package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/richinsley/shadercanvas"
	"github.com/richinsley/shadercanvas/options"
)

// diagnostic logs a state transition at info when diagnostic logging is
// enabled and at debug otherwise.
func (c *Controller) diagnostic(msg string, args ...any) {
	level := slog.LevelDebug
	if c.Settings().DiagnosticLogging {
		level = slog.LevelInfo
	}
	shadercanvas.Logger().Log(context.Background(), level, msg, args...)
}

type fpsCounter struct {
	last   time.Time
	frames int
}

// logFPS reports the measured frame rate at most once per second.
func (c *Controller) logFPS(frame int64, settings options.Settings) {
	if !settings.DiagnosticLogging {
		return
	}
	now := c.now()
	c.diag.frames++
	if c.diag.last.IsZero() {
		c.diag.last = now
		c.diag.frames = 0
		return
	}
	elapsed := now.Sub(c.diag.last)
	if elapsed < time.Second {
		return
	}
	fps := float64(c.diag.frames) / elapsed.Seconds()
	c.diag.last = now
	c.diag.frames = 0
	shadercanvas.Logger().Info("shader background fps", "fps", fps, "frame", frame)
}
