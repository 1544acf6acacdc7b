// Package media loads channel media off the render thread.
package media

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/richinsley/shadercanvas"
)

// MaxTextureSize bounds the longer side of a loaded image.
const MaxTextureSize = 2048

// LoadImage decodes the image at path and downscales it so that neither
// side exceeds MaxTextureSize.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	out := Fit(img, MaxTextureSize)
	shadercanvas.Logger().Debug("image loaded", "path", path, "format", format,
		"width", out.Bounds().Dx(), "height", out.Bounds().Dy())
	return out, nil
}

// Fit returns img scaled down to fit within max x max, preserving aspect.
// Images already within bounds are returned unchanged.
func Fit(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if max <= 0 || (w <= max && h <= max) {
		return img
	}
	nw, nh := max, max
	if w >= h {
		nh = h * max / w
	} else {
		nw = w * max / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
