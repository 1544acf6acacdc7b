package background

import "github.com/richinsley/shadercanvas/options"

// FrameRate is the host's frame pacing control.
type FrameRate interface {
	Vsync() bool
	SetVsync(bool)
	MaxFPS() int
	SetMaxFPS(int)
}

type frameRateOverride struct {
	applied      bool
	previousSync bool
	previousFPS  int
}

// applyFrameRate applies or releases the frame rate override according to
// settings.
func (c *Controller) applyFrameRate(s options.Settings) {
	if c.frameRate == nil {
		return
	}
	if !s.FramerateOverride {
		c.restoreFrameRate()
		return
	}
	if !c.fpsRate.applied {
		c.fpsRate.previousFPS = c.frameRate.MaxFPS()
		c.fpsRate.previousSync = c.frameRate.Vsync()
		c.fpsRate.applied = true
		c.diagnostic("frame rate override applied", "limit", options.ClampFramerate(s.FramerateLimit),
			"vsync", !s.DisableVsync)
	}
	c.frameRate.SetMaxFPS(options.ClampFramerate(s.FramerateLimit))
	c.frameRate.SetVsync(!s.DisableVsync)
}

func (c *Controller) restoreFrameRate() {
	if c.frameRate == nil || !c.fpsRate.applied {
		return
	}
	c.frameRate.SetVsync(c.fpsRate.previousSync)
	c.frameRate.SetMaxFPS(c.fpsRate.previousFPS)
	c.fpsRate.applied = false
	c.diagnostic("frame rate override restored", "max_fps", c.fpsRate.previousFPS, "vsync", c.fpsRate.previousSync)
}
