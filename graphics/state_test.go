package graphics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/shadercanvas/graphics"
	"github.com/richinsley/shadercanvas/graphics/graphicstest"
)

func TestStateRestoreRoundTrip(t *testing.T) {
	dev := graphicstest.NewDevice(640, 480)
	dev.Enable(graphics.DepthTest)
	dev.Enable(graphics.ScissorTest)
	dev.Scissor(graphics.Rect{X: 4, Y: 4, Width: 32, Height: 32})
	dev.ActiveTexture(graphics.Texture0 + 3)
	tex := dev.CreateTexture()
	dev.BindTexture(tex)

	before := graphics.Capture(dev)

	dev.Disable(graphics.DepthTest)
	dev.Disable(graphics.ScissorTest)
	dev.Enable(graphics.Blend)
	dev.DepthMask(false)
	dev.ColorMask(false, true, false, true)
	dev.BlendFuncSeparate(graphics.SrcAlpha, graphics.OneMinusSrcAlpha, graphics.One, graphics.OneMinusSrcAlpha)
	dev.Viewport(graphics.Rect{Width: 10, Height: 10})
	dev.ActiveTexture(graphics.Texture0)
	dev.BindTexture(0)

	assert.False(t, before.Equal(graphics.Capture(dev)))

	before.Restore(dev)
	after := graphics.Capture(dev)
	assert.True(t, before.Equal(after))
	assert.Equal(t, graphics.Texture0+3, after.ActiveTexture)
	assert.Equal(t, tex, after.Texture)
	require.Empty(t, dev.Errors)
}

func TestStateRestoresChannelUnits(t *testing.T) {
	dev := graphicstest.NewDevice(64, 64)
	var host [graphics.ChannelUnits]uint32
	for i := range host {
		host[i] = dev.CreateTexture()
		dev.ActiveTexture(graphics.Texture0 + graphics.TextureUnit(i))
		dev.BindTexture(host[i])
	}
	dev.ActiveTexture(graphics.Texture0 + 1)
	buf := dev.CreateBuffer()
	dev.BindArrayBuffer(buf)

	before := graphics.Capture(dev)
	assert.Equal(t, host, before.Units)
	assert.Equal(t, graphics.Texture0+1, dev.GetActiveTexture())

	other := dev.CreateTexture()
	for i := range host {
		dev.ActiveTexture(graphics.Texture0 + graphics.TextureUnit(i))
		dev.BindTexture(other)
	}
	dev.BindArrayBuffer(0)
	assert.False(t, before.Equal(graphics.Capture(dev)))

	before.Restore(dev)
	after := graphics.Capture(dev)
	assert.True(t, before.Equal(after))
	assert.Equal(t, host, after.Units)
	assert.Equal(t, buf, dev.GetArrayBufferBinding())
	assert.Equal(t, graphics.Texture0+1, dev.GetActiveTexture())
	assert.Equal(t, host[1], dev.GetTextureBinding())
	require.Empty(t, dev.Errors)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "vertex", graphics.VertexShader.String())
	assert.Equal(t, "fragment", graphics.FragmentShader.String())
	assert.Equal(t, "BLEND", graphics.Blend.String())
	assert.Contains(t, graphics.ShaderStage(1).String(), "ShaderStage")
}
