package background

import (
	"github.com/richinsley/shadercanvas"
	"github.com/richinsley/shadercanvas/renderer"
	"github.com/richinsley/shadercanvas/shader"
)

// taskSlot holds work posted to the render goroutine: at most one compile
// flush and the renderers waiting to be cleaned up. Cleanup discards a
// pending compile. Guarded by Controller.mu.
type taskSlot struct {
	compile  bool
	cleanups []*renderer.Renderer
}

func (s *taskSlot) postCompile() {
	if len(s.cleanups) == 0 {
		s.compile = true
	}
}

func (s *taskSlot) postCleanup(r *renderer.Renderer) {
	s.compile = false
	s.cleanups = append(s.cleanups, r)
}

func (s *taskSlot) take() (compile bool, cleanups []*renderer.Renderer) {
	compile, cleanups = s.compile, s.cleanups
	s.compile, s.cleanups = false, nil
	return compile, cleanups
}

// drain runs posted tasks. Render goroutine only.
func (c *Controller) drain() {
	c.mu.Lock()
	compile, cleanups := c.slot.take()
	c.mu.Unlock()

	for _, r := range cleanups {
		r.Cleanup()
	}
	if len(cleanups) > 0 {
		c.diagnostic("renderer cleanup flushed", "count", len(cleanups))
	}
	if compile {
		if r := c.getOrCreateRenderer(); r != nil {
			c.diagnostic("scheduled compile flush")
			c.flush(r)
		}
	}
}

// queueCompile records source as the only live request. inline is set when
// the caller is already on the render goroutine.
func (c *Controller) queueCompile(source string, inline bool) {
	c.mu.Lock()
	c.request = &compileRequest{source: source, enqueuedAt: c.now()}
	c.compileQueued = true
	c.needsCompile = true
	started := c.renderLoopStarted
	if started && !inline {
		c.slot.postCompile()
	}
	c.mu.Unlock()

	c.diagnostic("queued shader compile", "length", len(source), "inline", inline)
	if !started {
		c.diagnostic("deferring compile until first render pass", "err", ErrContextNotReady)
		return
	}
	if inline {
		if r := c.getOrCreateRenderer(); r != nil {
			c.flush(r)
		}
	}
}

// flush compiles the pending request, if any, on r.
func (c *Controller) flush(r *renderer.Renderer) {
	c.mu.Lock()
	if !c.compileQueued || c.request == nil {
		c.compileQueued = false
		c.mu.Unlock()
		return
	}
	req := c.request
	c.request = nil
	c.compileQueued = false
	c.mu.Unlock()

	source := req.source
	if shader.IsBlank(source) {
		shadercanvas.Logger().Warn("shader buffer empty, using fallback preset", "preset", shader.FallbackPreset)
		source = shader.Fallback()
	}

	ok := r.CompileShader(source)

	c.mu.Lock()
	current := c.renderer == r
	if current {
		c.needsCompile = !ok
		c.compilationFailed = !ok
	}
	c.mu.Unlock()
	if !current {
		return
	}
	if ok {
		r.ResetTime()
		c.fade.start(c.Settings().FadeInSeconds)
		c.diagnostic("compile flushed", "latency", c.now().Sub(req.enqueuedAt))
	}
}

// destroyRenderer drops the renderer and any pending request. The GPU
// cleanup runs now when inline, otherwise on the next frame.
func (c *Controller) destroyRenderer(inline bool) {
	c.mu.Lock()
	r := c.renderer
	c.renderer = nil
	c.compileQueued = false
	c.request = nil
	c.needsCompile = true
	c.slot.compile = false
	if r != nil && !inline {
		c.slot.postCleanup(r)
	}
	c.mu.Unlock()

	if r == nil {
		return
	}
	c.diagnostic("destroying shader renderer", "inline", inline)
	if inline {
		r.Cleanup()
	}
}
