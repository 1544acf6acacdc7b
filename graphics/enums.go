package graphics

import "fmt"

// The enum values below match the OpenGL constants so that a backend can
// pass them through without translation.

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage uint32

const (
	FragmentShader ShaderStage = 0x8B30
	VertexShader   ShaderStage = 0x8B31
)

func (s ShaderStage) String() string {
	switch s {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	}
	return fmt.Sprintf("ShaderStage(%#x)", uint32(s))
}

// Capability is a server-side toggle accepted by Enable/Disable.
type Capability uint32

const (
	DepthTest       Capability = 0x0B71
	CullFace        Capability = 0x0B44
	ScissorTest     Capability = 0x0C11
	Blend           Capability = 0x0BE2
	FramebufferSRGB Capability = 0x8DB9
)

func (c Capability) String() string {
	switch c {
	case DepthTest:
		return "DEPTH_TEST"
	case CullFace:
		return "CULL_FACE"
	case ScissorTest:
		return "SCISSOR_TEST"
	case Blend:
		return "BLEND"
	case FramebufferSRGB:
		return "FRAMEBUFFER_SRGB"
	}
	return fmt.Sprintf("Capability(%#x)", uint32(c))
}

// Capabilities lists every toggle captured by State.
var Capabilities = []Capability{DepthTest, CullFace, ScissorTest, Blend, FramebufferSRGB}

// BlendFactor is a source or destination blend weight.
type BlendFactor uint32

const (
	Zero             BlendFactor = 0
	One              BlendFactor = 1
	SrcAlpha         BlendFactor = 0x0302
	OneMinusSrcAlpha BlendFactor = 0x0303
)

// BlendEquation selects how source and destination are combined.
type BlendEquation uint32

const (
	FuncAdd             BlendEquation = 0x8006
	FuncSubtract        BlendEquation = 0x800A
	FuncReverseSubtract BlendEquation = 0x800B
)

// TextureUnit is an active texture unit, Texture0 + n.
type TextureUnit uint32

const Texture0 TextureUnit = 0x84C0

// DrawMode is the primitive topology passed to DrawArrays.
type DrawMode uint32

const (
	Triangles     DrawMode = 0x0004
	TriangleStrip DrawMode = 0x0005
)

// TextureFilter is a minification or magnification filter.
type TextureFilter int32

const (
	Nearest            TextureFilter = 0x2600
	Linear             TextureFilter = 0x2601
	LinearMipmapLinear TextureFilter = 0x2703
)

// TextureWrap is the wrap mode applied to both S and T.
type TextureWrap int32

const (
	Repeat      TextureWrap = 0x2901
	ClampToEdge TextureWrap = 0x812F
)

// PixelFormat describes texture storage. Only RGBA8 with unsigned byte
// components is used.
type PixelFormat uint32

const RGBA8 PixelFormat = 0x8058
