package graphics

// ShaderDevice creates and drives shader programs.
type ShaderDevice interface {
	CreateShader(stage ShaderStage) uint32
	ShaderSource(shader uint32, source string)
	// CompileShader compiles shader and returns the status with the
	// driver's info log.
	CompileShader(shader uint32) (ok bool, log string)
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	BindAttribLocation(program, index uint32, name string)
	LinkProgram(program uint32) (ok bool, log string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	// UniformLocation returns -1 for names the linker did not keep.
	UniformLocation(program uint32, name string) int32
	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, x, y float32)
	Uniform3f(loc int32, x, y, z float32)
	Uniform4f(loc int32, x, y, z, w float32)
}

// TextureDevice manages 2D textures.
type TextureDevice interface {
	CreateTexture() uint32
	DeleteTexture(tex uint32)
	ActiveTexture(unit TextureUnit)
	BindTexture(tex uint32)
	// TexImage2D allocates storage for the bound texture. pixels may be
	// nil to leave the contents undefined.
	TexImage2D(width, height int32, format PixelFormat, pixels []byte)
	TexParameters(min, mag TextureFilter, wrap TextureWrap)
	GenerateMipmap()
}

// FramebufferDevice manages framebuffer objects.
type FramebufferDevice interface {
	CreateFramebuffer() uint32
	DeleteFramebuffer(fbo uint32)
	BindFramebuffer(fbo uint32)
	// FramebufferTexture2D attaches tex as colour attachment 0 of the
	// bound framebuffer.
	FramebufferTexture2D(tex uint32)
	FramebufferComplete() bool
}

// VertexDevice manages vertex arrays and buffers.
type VertexDevice interface {
	CreateVertexArray() uint32
	DeleteVertexArray(vao uint32)
	BindVertexArray(vao uint32)
	CreateBuffer() uint32
	DeleteBuffer(buf uint32)
	BindArrayBuffer(buf uint32)
	ArrayBufferData(data []float32)
	// VertexAttrib enables attribute index and points it at the bound
	// array buffer. stride and offset are in float32 elements.
	VertexAttrib(index uint32, size, stride, offset int32)
	DrawArrays(mode DrawMode, first, count int32)
	ClearColor(r, g, b, a float32)
	Clear()
}

// StateDevice toggles and queries fixed-function state.
type StateDevice interface {
	Enable(c Capability)
	Disable(c Capability)
	IsEnabled(c Capability) bool

	DepthMask(write bool)
	GetDepthMask() bool
	ColorMask(r, g, b, a bool)
	GetColorMask() [4]bool

	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha BlendFactor)
	GetBlendFunc() BlendFunc
	BlendEquationSeparate(rgb, alpha BlendEquation)
	GetBlendEquation() (rgb, alpha BlendEquation)

	Viewport(r Rect)
	GetViewport() Rect
	Scissor(r Rect)
	GetScissorBox() Rect

	GetActiveTexture() TextureUnit
	GetTextureBinding() uint32
	GetCurrentProgram() uint32
	GetVertexArrayBinding() uint32
	GetArrayBufferBinding() uint32
	GetFramebufferBinding() uint32
}

// Device is the subset of OpenGL used by the renderer. Every method must
// be called on the goroutine that owns the context.
type Device interface {
	ShaderDevice
	TextureDevice
	FramebufferDevice
	VertexDevice
	StateDevice
}

// Rect is a viewport or scissor box.
type Rect struct {
	X, Y, Width, Height int32
}

// BlendFunc holds the four separate blend factors.
type BlendFunc struct {
	SrcRGB, DstRGB, SrcAlpha, DstAlpha BlendFactor
}
