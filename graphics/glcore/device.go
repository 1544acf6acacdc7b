// Package glcore implements graphics.Device on top of an OpenGL 4.1 core
// profile context using go-gl.
package glcore

import (
	"strings"
	"sync"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/shadercanvas/graphics"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init loads the GL function pointers. It must run on the goroutine that
// owns the current context, after the context is made current.
func Init() error {
	initOnce.Do(func() {
		initErr = gl.Init()
	})
	return initErr
}

// Device issues calls against the current GL context.
type Device struct{}

var _ graphics.Device = Device{}

// New returns a Device. Init must have succeeded.
func New() Device { return Device{} }

// Version returns the driver's GL_VERSION string.
func (Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (Device) CreateShader(stage graphics.ShaderStage) uint32 {
	return gl.CreateShader(uint32(stage))
}

func (Device) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (Device) CompileShader(shader uint32) (bool, string) {
	gl.CompileShader(shader)
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
	return false, strings.TrimRight(logText, "\x00")
}

func (Device) DeleteShader(shader uint32)          { gl.DeleteShader(shader) }
func (Device) CreateProgram() uint32               { return gl.CreateProgram() }
func (Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }
func (Device) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }

func (Device) BindAttribLocation(program, index uint32, name string) {
	gl.BindAttribLocation(program, index, gl.Str(name+"\x00"))
}

func (Device) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
	return false, strings.TrimRight(logText, "\x00")
}

func (Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }
func (Device) UseProgram(program uint32)    { gl.UseProgram(program) }

func (Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (Device) Uniform1i(loc int32, v int32)            { gl.Uniform1i(loc, v) }
func (Device) Uniform1f(loc int32, v float32)          { gl.Uniform1f(loc, v) }
func (Device) Uniform2f(loc int32, x, y float32)       { gl.Uniform2f(loc, x, y) }
func (Device) Uniform3f(loc int32, x, y, z float32)    { gl.Uniform3f(loc, x, y, z) }
func (Device) Uniform4f(loc int32, x, y, z, w float32) { gl.Uniform4f(loc, x, y, z, w) }

func (Device) CreateTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

func (Device) DeleteTexture(tex uint32)                { gl.DeleteTextures(1, &tex) }
func (Device) ActiveTexture(unit graphics.TextureUnit) { gl.ActiveTexture(uint32(unit)) }
func (Device) BindTexture(tex uint32)                  { gl.BindTexture(gl.TEXTURE_2D, tex) }

func (Device) TexImage2D(width, height int32, format graphics.PixelFormat, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(format), width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
}

func (Device) TexParameters(min, mag graphics.TextureFilter, wrap graphics.TextureWrap) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, int32(min))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, int32(mag))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, int32(wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, int32(wrap))
}

func (Device) GenerateMipmap() { gl.GenerateMipmap(gl.TEXTURE_2D) }

func (Device) CreateFramebuffer() uint32 {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	return fbo
}

func (Device) DeleteFramebuffer(fbo uint32) { gl.DeleteFramebuffers(1, &fbo) }
func (Device) BindFramebuffer(fbo uint32)   { gl.BindFramebuffer(gl.FRAMEBUFFER, fbo) }

func (Device) FramebufferTexture2D(tex uint32) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
}

func (Device) FramebufferComplete() bool {
	return gl.CheckFramebufferStatus(gl.FRAMEBUFFER) == gl.FRAMEBUFFER_COMPLETE
}

func (Device) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (Device) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }
func (Device) BindVertexArray(vao uint32)   { gl.BindVertexArray(vao) }

func (Device) CreateBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (Device) DeleteBuffer(buf uint32)    { gl.DeleteBuffers(1, &buf) }
func (Device) BindArrayBuffer(buf uint32) { gl.BindBuffer(gl.ARRAY_BUFFER, buf) }

func (Device) ArrayBufferData(data []float32) {
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (Device) VertexAttrib(index uint32, size, stride, offset int32) {
	gl.EnableVertexAttribArray(index)
	gl.VertexAttribPointer(index, size, gl.FLOAT, false, stride*4, gl.PtrOffset(int(offset)*4))
}

func (Device) DrawArrays(mode graphics.DrawMode, first, count int32) {
	gl.DrawArrays(uint32(mode), first, count)
}

func (Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }
func (Device) Clear()                        { gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT) }
