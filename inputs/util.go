package inputs

import "github.com/richinsley/shadercanvas/graphics"

// Sampler describes how a channel texture is sampled, using Shadertoy's
// vocabulary.
type Sampler struct {
	Filter string // "mipmap", "linear" or "nearest"
	Wrap   string // "repeat" or "clamp"
	VFlip  bool
}

// DefaultSampler matches the procedural channel textures.
var DefaultSampler = Sampler{Filter: "mipmap", Wrap: "repeat"}

func getWrapMode(wrap string) graphics.TextureWrap {
	switch wrap {
	case "clamp":
		return graphics.ClampToEdge
	default:
		return graphics.Repeat
	}
}

func getFilterMode(filter string) (minFilter, magFilter graphics.TextureFilter) {
	switch filter {
	case "mipmap":
		return graphics.LinearMipmapLinear, graphics.Linear
	case "nearest":
		return graphics.Nearest, graphics.Nearest
	default:
		return graphics.Linear, graphics.Linear
	}
}

// uploadRGBA creates a texture holding pix. The texture binding of the
// active unit is left at zero.
func uploadRGBA(dev graphics.TextureDevice, width, height int32, pix []byte, sampler Sampler) uint32 {
	tex := dev.CreateTexture()
	dev.BindTexture(tex)
	minFilter, magFilter := getFilterMode(sampler.Filter)
	dev.TexParameters(minFilter, magFilter, getWrapMode(sampler.Wrap))
	dev.TexImage2D(width, height, graphics.RGBA8, pix)
	if sampler.Filter == "mipmap" {
		dev.GenerateMipmap()
	}
	dev.BindTexture(0)
	return tex
}
