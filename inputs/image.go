package inputs

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/richinsley/shadercanvas/graphics"
)

// ImageChannel is a static image texture input.
type ImageChannel struct {
	*TextureChannel
	sampler Sampler
}

// vflip vertically flips the provided RGBA image.
func vflip(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	flipped := image.NewRGBA(bounds)
	height := bounds.Dy()

	rowSize := bounds.Dx() * 4
	for y := 0; y < height; y++ {
		srcRow := src.Pix[((height-1)-y)*src.Stride:]
		dstRow := flipped.Pix[y*flipped.Stride:]
		copy(dstRow, srcRow[:rowSize])
	}
	return flipped
}

// ToRGBA converts img to a tightly packed RGBA image anchored at the
// origin, flipping it vertically when asked.
func ToRGBA(img image.Image, flip bool) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	if flip {
		rgba = vflip(rgba)
	}
	return rgba
}

// NewImageChannel uploads img as an RGBA8 texture.
func NewImageChannel(dev graphics.TextureDevice, img image.Image, sampler Sampler) (*ImageChannel, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("input image is empty (%dx%d)", size.X, size.Y)
	}
	rgba := ToRGBA(img, sampler.VFlip)
	return &ImageChannel{
		TextureChannel: NewTextureChannel(dev, "texture", int32(size.X), int32(size.Y), rgba.Pix, sampler),
		sampler:        sampler,
	}, nil
}

func (c *ImageChannel) ChannelRes() [3]float32 {
	return [3]float32{float32(c.width), float32(c.height), 1}
}
