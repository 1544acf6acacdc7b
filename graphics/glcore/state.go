package glcore

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/shadercanvas/graphics"
)

func getInt(pname uint32) int32 {
	var v int32
	gl.GetIntegerv(pname, &v)
	return v
}

func getRect(pname uint32) graphics.Rect {
	var v [4]int32
	gl.GetIntegerv(pname, &v[0])
	return graphics.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
}

func (Device) Enable(c graphics.Capability)         { gl.Enable(uint32(c)) }
func (Device) Disable(c graphics.Capability)        { gl.Disable(uint32(c)) }
func (Device) IsEnabled(c graphics.Capability) bool { return gl.IsEnabled(uint32(c)) }

func (Device) DepthMask(write bool) { gl.DepthMask(write) }

func (Device) GetDepthMask() bool {
	var v bool
	gl.GetBooleanv(gl.DEPTH_WRITEMASK, &v)
	return v
}

func (Device) ColorMask(r, g, b, a bool) { gl.ColorMask(r, g, b, a) }

func (Device) GetColorMask() [4]bool {
	var v [4]bool
	gl.GetBooleanv(gl.COLOR_WRITEMASK, &v[0])
	return v
}

func (Device) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha graphics.BlendFactor) {
	gl.BlendFuncSeparate(uint32(srcRGB), uint32(dstRGB), uint32(srcAlpha), uint32(dstAlpha))
}

func (Device) GetBlendFunc() graphics.BlendFunc {
	return graphics.BlendFunc{
		SrcRGB:   graphics.BlendFactor(getInt(gl.BLEND_SRC_RGB)),
		DstRGB:   graphics.BlendFactor(getInt(gl.BLEND_DST_RGB)),
		SrcAlpha: graphics.BlendFactor(getInt(gl.BLEND_SRC_ALPHA)),
		DstAlpha: graphics.BlendFactor(getInt(gl.BLEND_DST_ALPHA)),
	}
}

func (Device) BlendEquationSeparate(rgb, alpha graphics.BlendEquation) {
	gl.BlendEquationSeparate(uint32(rgb), uint32(alpha))
}

func (Device) GetBlendEquation() (graphics.BlendEquation, graphics.BlendEquation) {
	return graphics.BlendEquation(getInt(gl.BLEND_EQUATION_RGB)), graphics.BlendEquation(getInt(gl.BLEND_EQUATION_ALPHA))
}

func (Device) Viewport(r graphics.Rect)     { gl.Viewport(r.X, r.Y, r.Width, r.Height) }
func (Device) GetViewport() graphics.Rect   { return getRect(gl.VIEWPORT) }
func (Device) Scissor(r graphics.Rect)      { gl.Scissor(r.X, r.Y, r.Width, r.Height) }
func (Device) GetScissorBox() graphics.Rect { return getRect(gl.SCISSOR_BOX) }

func (Device) GetActiveTexture() graphics.TextureUnit {
	return graphics.TextureUnit(getInt(gl.ACTIVE_TEXTURE))
}

func (Device) GetTextureBinding() uint32     { return uint32(getInt(gl.TEXTURE_BINDING_2D)) }
func (Device) GetCurrentProgram() uint32     { return uint32(getInt(gl.CURRENT_PROGRAM)) }
func (Device) GetVertexArrayBinding() uint32 { return uint32(getInt(gl.VERTEX_ARRAY_BINDING)) }
func (Device) GetArrayBufferBinding() uint32 { return uint32(getInt(gl.ARRAY_BUFFER_BINDING)) }
func (Device) GetFramebufferBinding() uint32 { return uint32(getInt(gl.FRAMEBUFFER_BINDING)) }
