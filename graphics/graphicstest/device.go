// Package graphicstest provides an in-memory graphics.Device for tests.
// It tracks object lifetimes, pipeline state, uniform values and draws
// without a GPU.
package graphicstest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/richinsley/shadercanvas/graphics"
)

// ErrorMarker makes CompileShader fail when present in a source.
const ErrorMarker = "#error"

var uniformDecl = regexp.MustCompile(`\buniform\s+\w+\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)

type shaderObject struct {
	stage    graphics.ShaderStage
	source   string
	compiled bool
}

type programObject struct {
	shaders  []uint32
	linked   bool
	uniforms map[string]int32
	values   map[int32][]float32
}

type textureObject struct {
	width, height int32
	format        graphics.PixelFormat
	pixels        []byte
	mipmapped     bool
}

// Draw records one DrawArrays call.
type Draw struct {
	Program     uint32
	Framebuffer uint32
	Viewport    graphics.Rect
	Mode        graphics.DrawMode
	Count       int32
	Blend       bool
	BlendFunc   graphics.BlendFunc
	Textures    map[graphics.TextureUnit]uint32
}

// Device is a fake graphics.Device. The zero value is not usable; call
// NewDevice.
type Device struct {
	// FailLink makes every LinkProgram call fail.
	FailLink bool

	// Compiled lists the source of every shader passed to CompileShader,
	// in call order.
	Compiled []string
	Draws    []Draw
	// Errors collects misuse that a real driver would flag as an error.
	Errors []string

	next         uint32
	shaders      map[uint32]*shaderObject
	programs     map[uint32]*programObject
	textures     map[uint32]*textureObject
	framebuffers map[uint32]uint32
	vertexArrays map[uint32]bool
	buffers      map[uint32][]float32

	enabled       map[graphics.Capability]bool
	depthMask     bool
	colorMask     [4]bool
	blendFunc     graphics.BlendFunc
	blendEqRGB    graphics.BlendEquation
	blendEqAlpha  graphics.BlendEquation
	viewport      graphics.Rect
	scissor       graphics.Rect
	activeTexture graphics.TextureUnit
	bindings      map[graphics.TextureUnit]uint32
	program       uint32
	vertexArray   uint32
	framebuffer   uint32
	arrayBuffer   uint32
	clearColor    [4]float32
}

var _ graphics.Device = (*Device)(nil)

// NewDevice returns a fake device whose state matches a fresh context with
// a width x height default framebuffer.
func NewDevice(width, height int32) *Device {
	return &Device{
		next:          1,
		shaders:       map[uint32]*shaderObject{},
		programs:      map[uint32]*programObject{},
		textures:      map[uint32]*textureObject{},
		framebuffers:  map[uint32]uint32{},
		vertexArrays:  map[uint32]bool{},
		buffers:       map[uint32][]float32{},
		enabled:       map[graphics.Capability]bool{},
		depthMask:     true,
		colorMask:     [4]bool{true, true, true, true},
		blendFunc:     graphics.BlendFunc{SrcRGB: graphics.One, DstRGB: graphics.Zero, SrcAlpha: graphics.One, DstAlpha: graphics.Zero},
		blendEqRGB:    graphics.FuncAdd,
		blendEqAlpha:  graphics.FuncAdd,
		viewport:      graphics.Rect{Width: width, Height: height},
		scissor:       graphics.Rect{Width: width, Height: height},
		activeTexture: graphics.Texture0,
		bindings:      map[graphics.TextureUnit]uint32{},
	}
}

func (d *Device) alloc() uint32 {
	id := d.next
	d.next++
	return id
}

func (d *Device) errorf(format string, args ...any) {
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
}

// Live object counts.

func (d *Device) LiveShaders() int      { return len(d.shaders) }
func (d *Device) LivePrograms() int     { return len(d.programs) }
func (d *Device) LiveTextures() int     { return len(d.textures) }
func (d *Device) LiveFramebuffers() int { return len(d.framebuffers) }
func (d *Device) LiveVertexArrays() int { return len(d.vertexArrays) }
func (d *Device) LiveBuffers() int      { return len(d.buffers) }

// IsProgram reports whether id names a live program.
func (d *Device) IsProgram(id uint32) bool {
	_, ok := d.programs[id]
	return ok
}

// UniformValue returns the last value written to the named uniform of
// program, or nil when it was never set.
func (d *Device) UniformValue(program uint32, name string) []float32 {
	p, ok := d.programs[program]
	if !ok {
		return nil
	}
	loc, ok := p.uniforms[name]
	if !ok {
		return nil
	}
	return p.values[loc]
}

// TextureSize returns the allocated size of tex.
func (d *Device) TextureSize(tex uint32) (int32, int32) {
	t, ok := d.textures[tex]
	if !ok {
		return 0, 0
	}
	return t.width, t.height
}

// TexturePixels returns the last upload to tex.
func (d *Device) TexturePixels(tex uint32) []byte {
	if t, ok := d.textures[tex]; ok {
		return t.pixels
	}
	return nil
}

// FramebufferAttachment returns the texture attached to fbo.
func (d *Device) FramebufferAttachment(fbo uint32) uint32 { return d.framebuffers[fbo] }

// ShaderDevice

func (d *Device) CreateShader(stage graphics.ShaderStage) uint32 {
	id := d.alloc()
	d.shaders[id] = &shaderObject{stage: stage}
	return id
}

func (d *Device) ShaderSource(shader uint32, source string) {
	s, ok := d.shaders[shader]
	if !ok {
		d.errorf("ShaderSource: unknown shader %d", shader)
		return
	}
	s.source = source
}

func (d *Device) CompileShader(shader uint32) (bool, string) {
	s, ok := d.shaders[shader]
	if !ok {
		d.errorf("CompileShader: unknown shader %d", shader)
		return false, "invalid shader"
	}
	d.Compiled = append(d.Compiled, s.source)
	if strings.TrimSpace(s.source) == "" {
		return false, "0:0: error: empty source"
	}
	if strings.Contains(s.source, ErrorMarker) {
		return false, "0:1: error: '#error' : " + s.stage.String() + " compilation failed"
	}
	s.compiled = true
	return true, ""
}

func (d *Device) DeleteShader(shader uint32) {
	if _, ok := d.shaders[shader]; !ok {
		d.errorf("DeleteShader: unknown shader %d", shader)
		return
	}
	delete(d.shaders, shader)
}

func (d *Device) CreateProgram() uint32 {
	id := d.alloc()
	d.programs[id] = &programObject{uniforms: map[string]int32{}, values: map[int32][]float32{}}
	return id
}

func (d *Device) AttachShader(program, shader uint32) {
	p, ok := d.programs[program]
	if !ok {
		d.errorf("AttachShader: unknown program %d", program)
		return
	}
	p.shaders = append(p.shaders, shader)
}

func (d *Device) DetachShader(program, shader uint32) {
	p, ok := d.programs[program]
	if !ok {
		return
	}
	for i, s := range p.shaders {
		if s == shader {
			p.shaders = append(p.shaders[:i], p.shaders[i+1:]...)
			return
		}
	}
}

func (d *Device) BindAttribLocation(program, index uint32, name string) {}

func (d *Device) LinkProgram(program uint32) (bool, string) {
	p, ok := d.programs[program]
	if !ok {
		return false, "invalid program"
	}
	if d.FailLink {
		return false, "error: linking failed"
	}
	var stages int
	loc := int32(0)
	for _, id := range p.shaders {
		s, ok := d.shaders[id]
		if !ok || !s.compiled {
			return false, "error: attached shader not compiled"
		}
		stages++
		for _, m := range uniformDecl.FindAllStringSubmatch(s.source, -1) {
			name := m[1]
			if _, dup := p.uniforms[name]; dup {
				continue
			}
			n := 1
			if m[2] != "" {
				n, _ = strconv.Atoi(m[2])
			}
			p.uniforms[name] = loc
			if m[2] != "" {
				for i := 0; i < n; i++ {
					p.uniforms[fmt.Sprintf("%s[%d]", name, i)] = loc + int32(i)
				}
			}
			loc += int32(n)
		}
	}
	if stages < 2 {
		return false, "error: missing shader stage"
	}
	p.linked = true
	return true, ""
}

func (d *Device) DeleteProgram(program uint32) {
	if _, ok := d.programs[program]; !ok {
		d.errorf("DeleteProgram: unknown program %d", program)
		return
	}
	delete(d.programs, program)
	if d.program == program {
		d.program = 0
	}
}

func (d *Device) UseProgram(program uint32) {
	if program != 0 {
		if p, ok := d.programs[program]; !ok || !p.linked {
			d.errorf("UseProgram: program %d not linked", program)
			return
		}
	}
	d.program = program
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	p, ok := d.programs[program]
	if !ok || !p.linked {
		return -1
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (d *Device) setUniform(loc int32, v ...float32) {
	if loc < 0 {
		return
	}
	p, ok := d.programs[d.program]
	if !ok {
		d.errorf("Uniform: no program bound for location %d", loc)
		return
	}
	p.values[loc] = v
}

func (d *Device) Uniform1i(loc int32, v int32)            { d.setUniform(loc, float32(v)) }
func (d *Device) Uniform1f(loc int32, v float32)          { d.setUniform(loc, v) }
func (d *Device) Uniform2f(loc int32, x, y float32)       { d.setUniform(loc, x, y) }
func (d *Device) Uniform3f(loc int32, x, y, z float32)    { d.setUniform(loc, x, y, z) }
func (d *Device) Uniform4f(loc int32, x, y, z, w float32) { d.setUniform(loc, x, y, z, w) }

// TextureDevice

func (d *Device) CreateTexture() uint32 {
	id := d.alloc()
	d.textures[id] = &textureObject{}
	return id
}

func (d *Device) DeleteTexture(tex uint32) {
	if _, ok := d.textures[tex]; !ok {
		d.errorf("DeleteTexture: unknown texture %d", tex)
		return
	}
	delete(d.textures, tex)
	for unit, bound := range d.bindings {
		if bound == tex {
			d.bindings[unit] = 0
		}
	}
}

func (d *Device) ActiveTexture(unit graphics.TextureUnit) { d.activeTexture = unit }

func (d *Device) BindTexture(tex uint32) {
	if tex != 0 {
		if _, ok := d.textures[tex]; !ok {
			d.errorf("BindTexture: unknown texture %d", tex)
			return
		}
	}
	d.bindings[d.activeTexture] = tex
}

func (d *Device) bound() *textureObject {
	t, ok := d.textures[d.bindings[d.activeTexture]]
	if !ok {
		d.errorf("no texture bound to unit %#x", uint32(d.activeTexture))
		return nil
	}
	return t
}

func (d *Device) TexImage2D(width, height int32, format graphics.PixelFormat, pixels []byte) {
	t := d.bound()
	if t == nil {
		return
	}
	if pixels != nil && int32(len(pixels)) < width*height*4 {
		d.errorf("TexImage2D: %d bytes for %dx%d", len(pixels), width, height)
	}
	t.width, t.height, t.format = width, height, format
	t.pixels = append([]byte(nil), pixels...)
	t.mipmapped = false
}

func (d *Device) TexParameters(min, mag graphics.TextureFilter, wrap graphics.TextureWrap) {
	d.bound()
}

func (d *Device) GenerateMipmap() {
	if t := d.bound(); t != nil {
		t.mipmapped = true
	}
}

// FramebufferDevice

func (d *Device) CreateFramebuffer() uint32 {
	id := d.alloc()
	d.framebuffers[id] = 0
	return id
}

func (d *Device) DeleteFramebuffer(fbo uint32) {
	if _, ok := d.framebuffers[fbo]; !ok {
		d.errorf("DeleteFramebuffer: unknown framebuffer %d", fbo)
		return
	}
	delete(d.framebuffers, fbo)
	if d.framebuffer == fbo {
		d.framebuffer = 0
	}
}

func (d *Device) BindFramebuffer(fbo uint32) {
	if fbo != 0 {
		if _, ok := d.framebuffers[fbo]; !ok {
			d.errorf("BindFramebuffer: unknown framebuffer %d", fbo)
			return
		}
	}
	d.framebuffer = fbo
}

func (d *Device) FramebufferTexture2D(tex uint32) {
	if d.framebuffer == 0 {
		d.errorf("FramebufferTexture2D: default framebuffer bound")
		return
	}
	d.framebuffers[d.framebuffer] = tex
}

func (d *Device) FramebufferComplete() bool {
	if d.framebuffer == 0 {
		return true
	}
	t, ok := d.textures[d.framebuffers[d.framebuffer]]
	return ok && t.width > 0 && t.height > 0
}

// VertexDevice

func (d *Device) CreateVertexArray() uint32 {
	id := d.alloc()
	d.vertexArrays[id] = true
	return id
}

func (d *Device) DeleteVertexArray(vao uint32) {
	delete(d.vertexArrays, vao)
	if d.vertexArray == vao {
		d.vertexArray = 0
	}
}

func (d *Device) BindVertexArray(vao uint32) { d.vertexArray = vao }

func (d *Device) CreateBuffer() uint32 {
	id := d.alloc()
	d.buffers[id] = nil
	return id
}

func (d *Device) DeleteBuffer(buf uint32) {
	delete(d.buffers, buf)
	if d.arrayBuffer == buf {
		d.arrayBuffer = 0
	}
}

func (d *Device) BindArrayBuffer(buf uint32) { d.arrayBuffer = buf }

func (d *Device) ArrayBufferData(data []float32) {
	if _, ok := d.buffers[d.arrayBuffer]; !ok {
		d.errorf("ArrayBufferData: no buffer bound")
		return
	}
	d.buffers[d.arrayBuffer] = append([]float32(nil), data...)
}

func (d *Device) VertexAttrib(index uint32, size, stride, offset int32) {
	if d.vertexArray == 0 {
		d.errorf("VertexAttrib: no vertex array bound")
	}
}

func (d *Device) DrawArrays(mode graphics.DrawMode, first, count int32) {
	if d.vertexArray == 0 {
		d.errorf("DrawArrays: no vertex array bound")
	}
	if d.program == 0 {
		d.errorf("DrawArrays: no program bound")
	}
	tex := make(map[graphics.TextureUnit]uint32, len(d.bindings))
	for u, t := range d.bindings {
		if t != 0 {
			tex[u] = t
		}
	}
	d.Draws = append(d.Draws, Draw{
		Program:     d.program,
		Framebuffer: d.framebuffer,
		Viewport:    d.viewport,
		Mode:        mode,
		Count:       count,
		Blend:       d.enabled[graphics.Blend],
		BlendFunc:   d.blendFunc,
		Textures:    tex,
	})
}

func (d *Device) ClearColor(r, g, b, a float32) { d.clearColor = [4]float32{r, g, b, a} }
func (d *Device) Clear()                        {}

// StateDevice

func (d *Device) Enable(c graphics.Capability)           { d.enabled[c] = true }
func (d *Device) Disable(c graphics.Capability)          { d.enabled[c] = false }
func (d *Device) IsEnabled(c graphics.Capability) bool   { return d.enabled[c] }
func (d *Device) DepthMask(write bool)                   { d.depthMask = write }
func (d *Device) GetDepthMask() bool                     { return d.depthMask }
func (d *Device) ColorMask(r, g, b, a bool)              { d.colorMask = [4]bool{r, g, b, a} }
func (d *Device) GetColorMask() [4]bool                  { return d.colorMask }
func (d *Device) GetBlendFunc() graphics.BlendFunc       { return d.blendFunc }
func (d *Device) Viewport(r graphics.Rect)               { d.viewport = r }
func (d *Device) GetViewport() graphics.Rect             { return d.viewport }
func (d *Device) Scissor(r graphics.Rect)                { d.scissor = r }
func (d *Device) GetScissorBox() graphics.Rect           { return d.scissor }
func (d *Device) GetActiveTexture() graphics.TextureUnit { return d.activeTexture }
func (d *Device) GetTextureBinding() uint32              { return d.bindings[d.activeTexture] }
func (d *Device) GetCurrentProgram() uint32              { return d.program }
func (d *Device) GetVertexArrayBinding() uint32          { return d.vertexArray }
func (d *Device) GetArrayBufferBinding() uint32          { return d.arrayBuffer }
func (d *Device) GetFramebufferBinding() uint32          { return d.framebuffer }

func (d *Device) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha graphics.BlendFactor) {
	d.blendFunc = graphics.BlendFunc{SrcRGB: srcRGB, DstRGB: dstRGB, SrcAlpha: srcAlpha, DstAlpha: dstAlpha}
}

func (d *Device) BlendEquationSeparate(rgb, alpha graphics.BlendEquation) {
	d.blendEqRGB, d.blendEqAlpha = rgb, alpha
}

func (d *Device) GetBlendEquation() (graphics.BlendEquation, graphics.BlendEquation) {
	return d.blendEqRGB, d.blendEqAlpha
}
