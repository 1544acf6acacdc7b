package renderer

import (
	"fmt"

	"github.com/richinsley/shadercanvas"
	"github.com/richinsley/shadercanvas/graphics"
	"github.com/richinsley/shadercanvas/shader"
)

// OutputTarget names the framebuffer the composite is drawn into. It is
// queried on every blit, so hosts that swap framebuffers stay correct.
type OutputTarget interface {
	Framebuffer() uint32
}

// DefaultFramebuffer targets the window's default framebuffer.
type DefaultFramebuffer struct{}

func (DefaultFramebuffer) Framebuffer() uint32 { return 0 }

// Canvas is an offscreen colour target at an independent resolution, plus
// the pass that composites it onto the host output.
type Canvas struct {
	dev    graphics.Device
	quad   *Quad
	output OutputTarget

	fbo    uint32
	tex    uint32
	width  int32
	height int32

	blit     *Program
	texLoc   int32
	alphaLoc int32

	prevFBO uint32
	writing bool
}

// NewCanvas allocates a width x height target and compiles the blit
// program. Framebuffer and texture bindings are left as they were.
func NewCanvas(dev graphics.Device, quad *Quad, output OutputTarget, width, height int) (*Canvas, error) {
	if output == nil {
		output = DefaultFramebuffer{}
	}
	c := &Canvas{dev: dev, quad: quad, output: output}

	blit, err := NewCompiler(dev).Compile(shader.BlitVertex(), shader.BlitFragment(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}
	c.blit = blit
	c.texLoc = dev.UniformLocation(blit.ID, "uTexture")
	c.alphaLoc = dev.UniformLocation(blit.ID, "uAlpha")

	prevFBO := dev.GetFramebufferBinding()
	prevTex := dev.GetTextureBinding()
	defer func() {
		dev.BindFramebuffer(prevFBO)
		dev.BindTexture(prevTex)
	}()

	c.width, c.height = clampSize(width), clampSize(height)
	c.tex = dev.CreateTexture()
	dev.BindTexture(c.tex)
	dev.TexParameters(graphics.Linear, graphics.Linear, graphics.ClampToEdge)
	dev.TexImage2D(c.width, c.height, graphics.RGBA8, nil)

	c.fbo = dev.CreateFramebuffer()
	dev.BindFramebuffer(c.fbo)
	dev.FramebufferTexture2D(c.tex)
	if !dev.FramebufferComplete() {
		c.Close()
		return nil, fmt.Errorf("offscreen framebuffer is not complete")
	}

	shadercanvas.Logger().Debug("canvas created", "width", c.width, "height", c.height)
	return c, nil
}

func clampSize(v int) int32 {
	if v < 1 {
		return 1
	}
	return int32(v)
}

// Size returns the current target size.
func (c *Canvas) Size() (int32, int32) { return c.width, c.height }

// Texture returns the colour attachment.
func (c *Canvas) Texture() uint32 { return c.tex }

// Framebuffer returns the offscreen framebuffer.
func (c *Canvas) Framebuffer() uint32 { return c.fbo }

// Resize reallocates the colour storage when the size changes. It reports
// whether anything was reallocated.
func (c *Canvas) Resize(width, height int) bool {
	w, h := clampSize(width), clampSize(height)
	if w == c.width && h == c.height {
		return false
	}
	prevTex := c.dev.GetTextureBinding()
	c.dev.BindTexture(c.tex)
	c.dev.TexImage2D(w, h, graphics.RGBA8, nil)
	c.dev.BindTexture(prevTex)
	c.width, c.height = w, h
	shadercanvas.Logger().Debug("canvas resized", "width", w, "height", h)
	return true
}

// Write redirects rendering into the canvas. Every Write must be paired
// with Restore.
func (c *Canvas) Write() {
	if c.writing {
		return
	}
	c.prevFBO = c.dev.GetFramebufferBinding()
	c.dev.BindFramebuffer(c.fbo)
	c.writing = true
}

// Restore rebinds the framebuffer that was bound when Write was called.
func (c *Canvas) Restore() {
	if !c.writing {
		return
	}
	c.dev.BindFramebuffer(c.prevFBO)
	c.writing = false
}

// Read binds the colour attachment to the active texture unit.
func (c *Canvas) Read() {
	c.dev.BindTexture(c.tex)
}

// Blit composites the canvas onto the output target. Colour is scaled by
// alpha and blended with src-alpha/one-minus-src-alpha; destination alpha
// ends up opaque. All touched state is restored.
func (c *Canvas) Blit(alpha float32) {
	saved := graphics.Capture(c.dev)
	defer saved.Restore(c.dev)

	c.dev.BindFramebuffer(c.output.Framebuffer())
	c.dev.Disable(graphics.DepthTest)
	c.dev.Disable(graphics.CullFace)
	c.dev.Enable(graphics.Blend)
	c.dev.BlendFuncSeparate(graphics.SrcAlpha, graphics.OneMinusSrcAlpha, graphics.One, graphics.OneMinusSrcAlpha)
	c.dev.BlendEquationSeparate(graphics.FuncAdd, graphics.FuncAdd)

	c.dev.UseProgram(c.blit.ID)
	c.dev.ActiveTexture(graphics.Texture0)
	c.Read()
	if c.texLoc >= 0 {
		c.dev.Uniform1i(c.texLoc, 0)
	}
	if c.alphaLoc >= 0 {
		c.dev.Uniform1f(c.alphaLoc, clamp01(alpha))
	}
	c.quad.Draw()
}

// Close releases the framebuffer, texture and blit program.
func (c *Canvas) Close() {
	c.Restore()
	if c.fbo != 0 {
		c.dev.DeleteFramebuffer(c.fbo)
		c.fbo = 0
	}
	if c.tex != 0 {
		c.dev.DeleteTexture(c.tex)
		c.tex = 0
	}
	c.blit.Delete(c.dev)
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
