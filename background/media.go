package background

import (
	"image"

	"github.com/richinsley/shadercanvas"
	"github.com/richinsley/shadercanvas/audio"
	"github.com/richinsley/shadercanvas/graphics"
	"github.com/richinsley/shadercanvas/inputs"
	"github.com/richinsley/shadercanvas/renderer"
)

type mediaSource struct {
	image   image.Image
	sampler inputs.Sampler
	audio   audio.Device
	set     bool
}

// mediaSlots holds the channel bindings requested by other goroutines.
// Guarded by Controller.mu.
type mediaSlots struct {
	sources [4]mediaSource
	dirty   [4]bool
}

// markDirty schedules every bound channel for upload to a new renderer.
func (m *mediaSlots) markDirty() {
	for i := range m.sources {
		m.dirty[i] = m.sources[i].set
	}
}

func (c *Controller) setMedia(index int, src mediaSource) {
	if index < 0 || index >= len(c.media.sources) {
		shadercanvas.Logger().Warn("channel index out of range", "index", index)
		return
	}
	c.mu.Lock()
	c.media.sources[index] = src
	c.media.dirty[index] = true
	c.mu.Unlock()
	c.diagnostic("channel media queued", "channel", index, "set", src.set)
}

// applyMedia uploads pending channel media into r. Host state is preserved.
func (c *Controller) applyMedia(r *renderer.Renderer) {
	c.mu.Lock()
	var pending [4]*mediaSource
	found := false
	for i := range c.media.sources {
		if c.media.dirty[i] {
			src := c.media.sources[i]
			pending[i] = &src
			c.media.dirty[i] = false
			found = true
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}

	dev := r.Device()
	saved := graphics.Capture(dev)
	defer saved.Restore(dev)

	log := shadercanvas.Logger()
	for i, src := range pending {
		if src == nil {
			continue
		}
		ch, err := newChannel(dev, src)
		if err != nil {
			log.Error("channel media failed", "channel", i, "err", err)
			continue
		}
		if err := r.SetChannel(i, ch); err != nil {
			log.Error("channel media failed", "channel", i, "err", err)
			continue
		}
		log.Info("channel media bound", "channel", i, "set", src.set)
	}
}

func newChannel(dev graphics.Device, src *mediaSource) (inputs.Channel, error) {
	switch {
	case src.image != nil:
		return inputs.NewImageChannel(dev, src.image, src.sampler)
	case src.audio != nil:
		return inputs.NewMicChannel(dev, src.audio)
	}
	return nil, nil
}
