package inputs

import "github.com/richinsley/shadercanvas/graphics"

// TextureChannel is a static RGBA8 texture.
type TextureChannel struct {
	dev       graphics.TextureDevice
	ctype     string
	textureID uint32
	width     int32
	height    int32
}

// NewTextureChannel uploads width*height RGBA8 pixels.
func NewTextureChannel(dev graphics.TextureDevice, ctype string, width, height int32, pix []byte, sampler Sampler) *TextureChannel {
	return &TextureChannel{
		dev:       dev,
		ctype:     ctype,
		textureID: uploadRGBA(dev, width, height, pix, sampler),
		width:     width,
		height:    height,
	}
}

func (c *TextureChannel) GetCType() string          { return c.ctype }
func (c *TextureChannel) Update(uniforms *Uniforms) {}
func (c *TextureChannel) GetTextureID() uint32      { return c.textureID }

func (c *TextureChannel) ChannelRes() [3]float32 {
	return [3]float32{float32(c.width), float32(c.height), 0}
}

func (c *TextureChannel) Destroy() {
	if c.textureID != 0 {
		c.dev.DeleteTexture(c.textureID)
		c.textureID = 0
	}
}
