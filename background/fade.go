package background

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fade eases the composite alpha in after a successful compile.
type fade struct {
	tween    *gween.Tween
	lastTime float64
	started  bool
}

func (f *fade) start(seconds float64) {
	if seconds <= 0 {
		f.tween = nil
		return
	}
	f.tween = gween.New(0, 1, float32(seconds), ease.OutQuad)
	f.started = false
}

// alpha scales host by the fade progress at host time now.
func (f *fade) alpha(host float32, now float64) float32 {
	if f.tween == nil {
		return host
	}
	if !f.started {
		f.started = true
		f.lastTime = now
	}
	dt := now - f.lastTime
	if dt < 0 {
		dt = 0
	}
	f.lastTime = now
	v, done := f.tween.Update(float32(dt))
	if done {
		f.tween = nil
		return host
	}
	return host * v
}
