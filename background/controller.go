// Package background schedules shader compiles onto the render goroutine and
// draws the compiled shader behind a host's frame.
//
// The host calls RenderFrame once per frame from the goroutine that owns the
// graphics context. Every other method may be called from any goroutine; GPU
// work they cause is deferred to the next RenderFrame.
package background

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/richinsley/shadercanvas/audio"
	"github.com/richinsley/shadercanvas/inputs"
	"github.com/richinsley/shadercanvas/options"
	"github.com/richinsley/shadercanvas/renderer"
)

// ErrContextNotReady is reported when a compile is requested before the
// first RenderFrame. The request is kept and flushed by that frame.
var ErrContextNotReady = errors.New("graphics context not ready")

// Editor supplies the current shader buffer.
type Editor interface {
	CurrentSource() string
	AutoCompile() bool
}

type compileRequest struct {
	source     string
	enqueuedAt time.Time
}

// Controller owns the compile state machine and the renderer.
type Controller struct {
	newRenderer func() *renderer.Renderer
	editor      Editor
	frameRate   FrameRate
	now         func() time.Time

	mu                sync.Mutex
	settings          options.Settings
	enabled           bool
	needsCompile      bool
	compileQueued     bool
	compilationFailed bool
	renderLoopStarted bool
	request           *compileRequest
	renderer          *renderer.Renderer
	slot              taskSlot
	media             mediaSlots

	// Render goroutine only.
	diag    fpsCounter
	fade    fade
	fpsRate frameRateOverride
}

// Option configures a Controller.
type Option func(*Controller)

// WithSettings sets the initial settings.
func WithSettings(s *options.Settings) Option {
	return func(c *Controller) {
		if s != nil {
			c.settings = *s
		}
	}
}

// WithFrameRate lets the controller override the host's frame pacing.
func WithFrameRate(fr FrameRate) Option {
	return func(c *Controller) { c.frameRate = fr }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New returns an enabled controller. newRenderer is called on the render
// goroutine whenever a renderer is needed.
func New(newRenderer func() *renderer.Renderer, editor Editor, opts ...Option) *Controller {
	c := &Controller{
		newRenderer:  newRenderer,
		editor:       editor,
		now:          time.Now,
		settings:     *options.Defaults(),
		enabled:      true,
		needsCompile: true,
	}
	for _, o := range opts {
		o(c)
	}
	c.diagnostic("shader background initialized", "enabled", c.enabled)
	return c
}

// SetSettings replaces the settings. Takes effect on the next frame.
func (c *Controller) SetSettings(s options.Settings) {
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()
}

// Settings returns a copy of the current settings.
func (c *Controller) Settings() options.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetEnabled turns the background on or off. Disabling drops the renderer
// at once and tears its GPU resources down on the next frame.
func (c *Controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	if c.enabled == enabled {
		c.mu.Unlock()
		return
	}
	c.enabled = enabled
	if enabled {
		c.needsCompile = true
		c.compileQueued = false
		c.mu.Unlock()
		c.diagnostic("shader background enabled")
		return
	}
	c.mu.Unlock()

	c.diagnostic("shader background disabled, destroying renderer")
	c.destroyRenderer(false)
}

// IsEnabled reports whether the background is on.
func (c *Controller) IsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// IsRendererReady reports whether a compiled program is available to draw.
func (c *Controller) IsRendererReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled && c.renderer != nil && c.renderer.IsCompiled()
}

// Renderer returns the current renderer, or nil when none exists. The
// renderer must only be used on the render goroutine.
func (c *Controller) Renderer() *renderer.Renderer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderer
}

// OnSourceSaved handles a save of the shader buffer. It clears a previous
// failure and, with auto-compile on, queues source for compilation.
func (c *Controller) OnSourceSaved(source string) {
	c.mu.Lock()
	c.needsCompile = true
	c.compilationFailed = false
	enabled := c.enabled
	c.mu.Unlock()

	auto := c.editor.AutoCompile()
	c.diagnostic("shader saved, queued for compile", "auto_compile", auto, "length", len(source))
	if enabled && auto {
		c.queueCompile(source, false)
	}
}

// RequestManualCompile queues the current editor buffer for compilation.
func (c *Controller) RequestManualCompile() {
	if !c.IsEnabled() {
		return
	}
	c.diagnostic("manual compile requested")
	c.queueCompile(c.editor.CurrentSource(), false)
}

// CompileCurrentShader queues the current editor buffer for compilation.
func (c *Controller) CompileCurrentShader() {
	if !c.IsEnabled() {
		return
	}
	c.diagnostic("compile current shader", "auto_compile", c.editor.AutoCompile())
	c.queueCompile(c.editor.CurrentSource(), false)
}

// SetChannelMedia binds img to channel index, sampled as sampler. The
// texture is uploaded on the next frame. A nil image restores the
// procedural fallback.
func (c *Controller) SetChannelMedia(index int, img image.Image, sampler inputs.Sampler) {
	c.setMedia(index, mediaSource{image: img, sampler: sampler, set: img != nil})
}

// SetChannelAudio binds an audio-spectrum channel fed by dev to index.
func (c *Controller) SetChannelAudio(index int, dev audio.Device) {
	c.setMedia(index, mediaSource{audio: dev, set: dev != nil})
}

// RenderFrame is the per-frame entry point. It runs pending tasks, compiles
// when needed and draws the current program into the host's output.
func (c *Controller) RenderFrame(width, height int, alpha float32, time float64, frameIndex int64) {
	c.drain()

	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	first := !c.renderLoopStarted
	c.renderLoopStarted = true
	needsCompile, queued, failed := c.needsCompile, c.compileQueued, c.compilationFailed
	settings := c.settings
	c.mu.Unlock()

	c.applyFrameRate(settings)
	if first {
		c.diagnostic("first render pass, graphics context ready")
	}
	c.diagnostic("render frame", "frame", frameIndex, "needs_compile", needsCompile,
		"compile_queued", queued, "failed", failed)

	auto := c.editor.AutoCompile()
	switch {
	case needsCompile && !failed && auto && !queued:
		c.diagnostic("auto-compiling shader during render pass")
		c.queueCompile(c.editor.CurrentSource(), true)
	case needsCompile && !auto:
		c.diagnostic("shader requires manual compile")
	case failed:
		c.diagnostic("shader compilation previously failed, waiting for reload")
	}

	r := c.getOrCreateRenderer()
	if r == nil {
		return
	}
	c.flush(r)
	c.applyMedia(r)

	if !r.IsCompiled() {
		c.diagnostic("shader not compiled yet, nothing drawn")
		return
	}
	r.SetHostFrame(frameIndex)
	r.SetSpeed(float32(settings.Speed))
	a := c.fade.alpha(alpha, time)
	if err := r.Render(width, height, a, settings.Quality); err != nil && !errors.Is(err, renderer.ErrMissingProgram) {
		c.diagnostic("shader frame failed", "frame", frameIndex, "err", err)
		return
	}
	c.logFPS(frameIndex, settings)
}

// Close restores the host frame rate and releases every GPU resource. It
// must be called on the render goroutine.
func (c *Controller) Close() {
	c.restoreFrameRate()
	c.destroyRenderer(true)
	c.drain()
	c.mu.Lock()
	c.enabled = false
	c.mu.Unlock()
}

func (c *Controller) getOrCreateRenderer() *renderer.Renderer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return nil
	}
	if c.renderer == nil {
		c.renderer = c.newRenderer()
		c.media.markDirty()
	}
	return c.renderer
}
