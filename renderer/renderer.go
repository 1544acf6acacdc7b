package renderer

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/richinsley/shadercanvas"
	"github.com/richinsley/shadercanvas/audio"
	"github.com/richinsley/shadercanvas/graphics"
	"github.com/richinsley/shadercanvas/inputs"
	"github.com/richinsley/shadercanvas/shader"
)

// MinQuality is the smallest render scale accepted by Render.
const MinQuality = 0.05

// translatedVersion is the dialect the translator accepts as input.
const translatedVersion = "300 es"

// Renderer draws one compiled fragment shader per host frame into an
// offscreen canvas and composites it onto the host output.
//
// All methods except IsCompiled must be called on the goroutine that owns
// the graphics context.
type Renderer struct {
	dev        graphics.Device
	compiler   *Compiler
	pointer    graphics.Pointer
	output     OutputTarget
	now        func() time.Time
	translator Translator
	version    string

	initialized bool
	quad        *Quad
	canvas      *Canvas
	defaults    [4]inputs.Channel
	channels    [4]inputs.Channel

	program       *Program
	compiled      atomic.Bool
	missingLogged bool

	start     time.Time
	lastFrame time.Time
	frame     int32
	hostFrame int64
	speed     float32

	mouseWasDown bool
	mouse        [4]float32
	legacyMouse  [2]float32
}

// New returns a renderer. GPU resources are created lazily on the first
// render.
func New(dev graphics.Device, opts ...Option) *Renderer {
	r := &Renderer{
		dev:      dev,
		compiler: NewCompiler(dev),
		output:   DefaultFramebuffer{},
		now:      time.Now,
		version:  shader.DefaultVersion,
		speed:    1,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// EnsureInitialized creates the quad, the fallback channel textures and
// the canvas. Host state is left untouched.
func (r *Renderer) EnsureInitialized() (err error) {
	if r.initialized {
		return nil
	}
	saved := graphics.Capture(r.dev)
	defer saved.Restore(r.dev)

	r.quad = NewQuad(r.dev)
	r.defaults = inputs.Defaults(r.dev)
	r.canvas, err = NewCanvas(r.dev, r.quad, r.output, 1, 1)
	if err != nil {
		r.releaseResources()
		return err
	}
	r.initialized = true
	r.ResetTime()
	shadercanvas.Logger().Info("renderer initialized")
	return nil
}

// build patches, optionally translates and compiles fragment.
func (r *Renderer) build(fragment string) (*Program, error) {
	if r.translator == nil {
		patched := shader.PatchFragment(fragment, shader.WithVersion(r.version))
		return r.compiler.Compile(shader.Vertex(), patched.Source, nil)
	}
	patched := shader.PatchFragment(fragment, shader.WithVersion(translatedVersion), shader.WithPrecision())
	code, names, err := r.translator.TranslateFragment(patched.Source)
	if err != nil {
		return nil, &StageCompileError{Stage: graphics.FragmentShader, Log: err.Error()}
	}
	return r.compiler.Compile(shader.Vertex(), code, NameMap(names))
}

// CompileShader builds fragment into a new program. On success the new
// program replaces the active one, which is then deleted. On failure the
// active program is kept and the diagnostic is logged once. CompileShader
// never panics.
func (r *Renderer) CompileShader(fragment string) (ok bool) {
	log := shadercanvas.Logger()
	defer func() {
		if p := recover(); p != nil {
			log.Error("shader compilation panicked", "panic", p)
			ok = false
		}
	}()

	prog, err := r.build(fragment)
	if err != nil {
		log.Error("shader compilation failed", "err", err)
		return false
	}

	old := r.program
	r.program = prog
	r.compiled.Store(true)
	r.missingLogged = false
	if old != nil {
		old.Delete(r.dev)
	}
	log.Info("shader compiled", "program", prog.ID)
	return true
}

// IsCompiled reports whether a program is available. Safe for concurrent
// use.
func (r *Renderer) IsCompiled() bool { return r.compiled.Load() }

// Program returns the active program, or nil.
func (r *Renderer) Program() *Program { return r.program }

// Device returns the device the renderer draws with.
func (r *Renderer) Device() graphics.Device { return r.dev }

// Canvas returns the offscreen canvas, or nil before initialization.
func (r *Renderer) Canvas() *Canvas { return r.canvas }

// ResetTime restarts elapsed time and the frame counter.
func (r *Renderer) ResetTime() {
	r.start = r.now()
	r.lastFrame = time.Time{}
	r.frame = 0
}

// SetHostFrame sets the value reported through persistent_frame.
func (r *Renderer) SetHostFrame(frame int64) { r.hostFrame = frame }

// SetSpeed sets the value reported through the speed uniform.
func (r *Renderer) SetSpeed(speed float32) { r.speed = speed }

// SetChannel replaces channel i. A nil channel restores the procedural
// fallback. The previous replacement, if any, is destroyed.
func (r *Renderer) SetChannel(i int, ch inputs.Channel) error {
	if i < 0 || i >= len(r.channels) {
		return fmt.Errorf("channel index %d out of range", i)
	}
	if old := r.channels[i]; old != nil && old != ch {
		old.Destroy()
	}
	r.channels[i] = ch
	return nil
}

func (r *Renderer) channel(i int) inputs.Channel {
	if ch := r.channels[i]; ch != nil {
		return ch
	}
	return r.defaults[i]
}

func (r *Renderer) sampleRate() float32 {
	for i := range r.channels {
		if sr, ok := r.channels[i].(inputs.SampleRater); ok {
			return float32(sr.SampleRate())
		}
	}
	return audio.DefaultSampleRate
}

// TargetSize returns the canvas size used for a host framebuffer of
// width x height at quality.
func TargetSize(width, height int, quality float64) (int, int) {
	if quality < MinQuality || math.IsNaN(quality) {
		quality = MinQuality
	}
	scale := func(v int) int {
		return max(1, int(math.Round(float64(v)*quality)))
	}
	return scale(width), scale(height)
}

// Render draws one frame at width x height scaled by quality and
// composites it with alpha. Host state is restored even if the pass
// panics.
func (r *Renderer) Render(width, height int, alpha float32, quality float64) (err error) {
	if r.program == nil {
		if !r.missingLogged {
			shadercanvas.Logger().Error("render skipped", "err", ErrMissingProgram)
			r.missingLogged = true
		}
		return ErrMissingProgram
	}
	if err := r.EnsureInitialized(); err != nil {
		return err
	}

	tw, th := TargetSize(width, height, quality)
	saved := graphics.Capture(r.dev)
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("render panicked: %v", p)
			shadercanvas.Logger().Error("render failed", "err", err)
		}
		if ferr := r.finishFrame(saved, alpha); ferr != nil && err == nil {
			err = ferr
		}
	}()

	r.canvas.Resize(tw, th)
	r.canvas.Write()

	r.dev.Viewport(graphics.Rect{Width: int32(tw), Height: int32(th)})
	r.dev.Disable(graphics.DepthTest)
	r.dev.DepthMask(false)
	r.dev.Enable(graphics.Blend)
	r.dev.BlendFuncSeparate(graphics.SrcAlpha, graphics.OneMinusSrcAlpha, graphics.SrcAlpha, graphics.OneMinusSrcAlpha)
	r.dev.BlendEquationSeparate(graphics.FuncAdd, graphics.FuncAdd)
	r.dev.Disable(graphics.CullFace)
	r.dev.Disable(graphics.ScissorTest)
	r.dev.ColorMask(true, true, true, true)
	r.dev.Disable(graphics.FramebufferSRGB)

	r.dev.UseProgram(r.program.ID)
	uniforms := r.updateUniforms(width, height, tw, th)
	r.bindChannels(uniforms)
	r.quad.Draw()
	r.frame++
	return nil
}

// finishFrame leaves the canvas, restores host state and composites.
func (r *Renderer) finishFrame(saved graphics.State, alpha float32) (err error) {
	r.canvas.Restore()
	saved.Restore(r.dev)
	defer func() {
		if p := recover(); p != nil {
			saved.Restore(r.dev)
			err = fmt.Errorf("composite panicked: %v", p)
			shadercanvas.Logger().Error("composite failed", "err", err)
		}
	}()
	r.canvas.Blit(alpha)
	return nil
}

func (r *Renderer) updateMouse(hostW, hostH, tw, th int) {
	if r.pointer == nil {
		return
	}
	x, y, ok := r.pointer.CursorPos()
	if !ok || hostW <= 0 || hostH <= 0 {
		// Off-window: the position reads as zero, the click origin stays.
		r.mouse[0], r.mouse[1] = 0, 0
		r.legacyMouse = [2]float32{}
		r.mouseWasDown = false
		return
	}
	nx := float32(x / float64(hostW))
	ny := float32(y / float64(hostH))
	px := nx * float32(tw)
	py := (1 - ny) * float32(th)

	down := r.pointer.ButtonDown()
	if down && !r.mouseWasDown {
		r.mouse[2], r.mouse[3] = px, py
	}
	r.mouseWasDown = down
	r.mouse[0], r.mouse[1] = px, py
	r.legacyMouse = [2]float32{nx, ny}
}

func (r *Renderer) updateUniforms(hostW, hostH, tw, th int) *inputs.Uniforms {
	now := r.now()
	elapsed := float32(now.Sub(r.start).Seconds())
	var delta float32
	if !r.lastFrame.IsZero() {
		delta = float32(now.Sub(r.lastFrame).Seconds())
	}
	r.lastFrame = now
	r.updateMouse(hostW, hostH, tw, th)

	u := &r.program.Uniforms
	w, h := float32(tw), float32(th)

	set1f(r.dev, u.Time, elapsed)
	set1f(r.dev, u.ITime, elapsed)
	set1f(r.dev, u.ITimeDelta, delta)
	set1f(r.dev, u.Speed, r.speed)
	set1f(r.dev, u.ISampleRate, r.sampleRate())
	if u.Resolution >= 0 {
		r.dev.Uniform2f(u.Resolution, w, h)
	}
	if u.IResolution >= 0 {
		r.dev.Uniform3f(u.IResolution, w, h, 1)
	}
	if u.IMouse >= 0 {
		r.dev.Uniform4f(u.IMouse, r.mouse[0], r.mouse[1], r.mouse[2], r.mouse[3])
	}
	if u.Mouse >= 0 {
		r.dev.Uniform2f(u.Mouse, r.legacyMouse[0], r.legacyMouse[1])
	}
	set1i(r.dev, u.Frame, r.frame)
	set1i(r.dev, u.IFrame, r.frame)
	set1i(r.dev, u.PersistentFrame, int32(r.hostFrame))
	if u.IDate >= 0 {
		year, month, day := now.Date()
		midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
		r.dev.Uniform4f(u.IDate, float32(year), float32(month-1), float32(day), float32(now.Sub(midnight).Seconds()))
	}

	return &inputs.Uniforms{
		Time:      elapsed,
		TimeDelta: delta,
		Mouse:     r.mouse,
		Frame:     r.frame,
	}
}

// bindChannels binds all four channels to units 0-3 whether or not the
// shader samples them. Every channel is updated before any unit is bound
// since an update may rebind the active unit.
func (r *Renderer) bindChannels(uniforms *inputs.Uniforms) {
	u := &r.program.Uniforms
	for i := 0; i < graphics.ChannelUnits; i++ {
		if ch := r.channel(i); ch != nil {
			ch.Update(uniforms)
		}
	}
	for i := 0; i < graphics.ChannelUnits; i++ {
		ch := r.channel(i)
		if ch == nil {
			continue
		}
		r.dev.ActiveTexture(graphics.Texture0 + graphics.TextureUnit(i))
		r.dev.BindTexture(ch.GetTextureID())
		set1i(r.dev, u.IChannel[i], int32(i))
		if u.IChannelResolution[i] >= 0 {
			res := ch.ChannelRes()
			r.dev.Uniform3f(u.IChannelResolution[i], res[0], res[1], res[2])
		}
		set1f(r.dev, u.IChannelTime[i], uniforms.Time)
	}
}

func set1f(dev graphics.ShaderDevice, loc int32, v float32) {
	if loc >= 0 {
		dev.Uniform1f(loc, v)
	}
}

func set1i(dev graphics.ShaderDevice, loc int32, v int32) {
	if loc >= 0 {
		dev.Uniform1i(loc, v)
	}
}

func (r *Renderer) releaseResources() {
	for i := range r.channels {
		if r.channels[i] != nil {
			r.channels[i].Destroy()
			r.channels[i] = nil
		}
	}
	for i := range r.defaults {
		if r.defaults[i] != nil {
			r.defaults[i].Destroy()
			r.defaults[i] = nil
		}
	}
	if r.canvas != nil {
		r.canvas.Close()
		r.canvas = nil
	}
	if r.quad != nil {
		r.quad.Close()
		r.quad = nil
	}
}

// Cleanup deletes the program and every GPU resource the renderer owns.
// The renderer may be reused afterwards; it reinitializes lazily.
func (r *Renderer) Cleanup() {
	if r.program != nil {
		r.program.Delete(r.dev)
		r.program = nil
	}
	r.compiled.Store(false)
	r.releaseResources()
	r.initialized = false
	r.missingLogged = false
	shadercanvas.Logger().Info("renderer cleaned up")
}
