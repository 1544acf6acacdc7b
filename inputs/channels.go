package inputs

import (
	"math/rand"

	"github.com/richinsley/shadercanvas/graphics"
)

// ProceduralSize is the edge length of the fallback channel textures.
const ProceduralSize = 256

const proceduralSeed = 0xC0FFEE

// Pattern is one of the procedural fallback images.
type Pattern int

const (
	GrayNoise Pattern = iota
	Gradient
	Stripes
	ColorNoise
)

func (p Pattern) String() string {
	switch p {
	case GrayNoise:
		return "gray-noise"
	case Gradient:
		return "gradient"
	case Stripes:
		return "stripes"
	case ColorNoise:
		return "color-noise"
	}
	return "unknown"
}

// ProceduralPixels returns size*size RGBA8 pixels for the fallback texture
// of channel index. The output is deterministic per index.
func ProceduralPixels(index, size int) []byte {
	rng := rand.New(rand.NewSource(int64(proceduralSeed + index*997)))
	pix := make([]byte, size*size*4)
	denom := float64(size - 1)
	if denom <= 0 {
		denom = 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			var r, g, b byte
			switch Pattern(index % 4) {
			case GrayNoise:
				v := byte(rng.Intn(256))
				r, g, b = v, v, v
			case Gradient:
				fx, fy := float64(x)/denom, float64(y)/denom
				r = byte(fx * 255)
				g = byte(fy * 255)
				b = byte((fx + fy) / 2 * 255)
			case Stripes:
				stripe := byte(((x ^ y) & 15) * 16)
				r, g, b = stripe, 255-stripe, stripe/2+64
			case ColorNoise:
				r = byte(rng.Intn(256))
				g = byte(rng.Intn(256))
				b = byte(rng.Intn(256))
			}
			i := (y*size + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, 255
		}
	}
	return pix
}

// NewProceduralChannel uploads the fallback texture for channel index.
func NewProceduralChannel(dev graphics.TextureDevice, index int) *TextureChannel {
	pix := ProceduralPixels(index, ProceduralSize)
	return NewTextureChannel(dev, "procedural", ProceduralSize, ProceduralSize, pix, DefaultSampler)
}

// Defaults returns the four fallback channels bound when no media is
// configured.
func Defaults(dev graphics.TextureDevice) [4]Channel {
	var chans [4]Channel
	for i := range chans {
		chans[i] = NewProceduralChannel(dev, i)
	}
	return chans
}
