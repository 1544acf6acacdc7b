package inputs

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/shadercanvas/audio"
	"github.com/richinsley/shadercanvas/graphics/graphicstest"
)

func TestProceduralPixelsDeterministic(t *testing.T) {
	for i := 0; i < 4; i++ {
		a := ProceduralPixels(i, 16)
		b := ProceduralPixels(i, 16)
		require.Len(t, a, 16*16*4)
		assert.Equal(t, a, b, "channel %d", i)
		for p := 3; p < len(a); p += 4 {
			if a[p] != 255 {
				t.Fatalf("channel %d pixel %d alpha %d", i, p/4, a[p])
			}
		}
	}
	assert.NotEqual(t, ProceduralPixels(0, 16), ProceduralPixels(3, 16))
}

func TestProceduralPatterns(t *testing.T) {
	const size = 16
	gray := ProceduralPixels(int(GrayNoise), size)
	for p := 0; p < len(gray); p += 4 {
		require.Equal(t, gray[p], gray[p+1])
		require.Equal(t, gray[p], gray[p+2])
	}

	grad := ProceduralPixels(int(Gradient), size)
	last := (size*size - 1) * 4
	assert.Equal(t, []byte{0, 0, 0, 255}, grad[0:4])
	assert.Equal(t, []byte{255, 255, 255, 255}, grad[last:last+4])

	stripes := ProceduralPixels(int(Stripes), size)
	// (x=1, y=0): stripe = 16
	assert.Equal(t, []byte{16, 239, 72, 255}, stripes[4:8])
}

func TestDefaultsUploadMipmappedTextures(t *testing.T) {
	dev := graphicstest.NewDevice(100, 100)
	chans := Defaults(dev)
	assert.Equal(t, 4, dev.LiveTextures())
	for _, ch := range chans {
		assert.Equal(t, [3]float32{ProceduralSize, ProceduralSize, 0}, ch.ChannelRes())
		w, h := dev.TextureSize(ch.GetTextureID())
		assert.Equal(t, int32(ProceduralSize), w)
		assert.Equal(t, int32(ProceduralSize), h)
		ch.Destroy()
		ch.Destroy()
	}
	assert.Zero(t, dev.LiveTextures())
	assert.Empty(t, dev.Errors)
}

func TestImageChannelFlip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})

	dev := graphicstest.NewDevice(10, 10)
	ch, err := NewImageChannel(dev, img, Sampler{Filter: "linear", VFlip: true})
	require.NoError(t, err)
	pix := dev.TexturePixels(ch.GetTextureID())
	assert.Equal(t, []byte{0, 0, 255, 255}, pix[0:4])
	assert.Equal(t, [3]float32{2, 2, 1}, ch.ChannelRes())
	assert.Equal(t, "texture", ch.GetCType())

	_, err = NewImageChannel(dev, nil, DefaultSampler)
	assert.Error(t, err)
}

func TestToRGBAOffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 8, 7))
	img.Set(5, 5, color.RGBA{G: 200, A: 255})
	rgba := ToRGBA(img, false)
	assert.Equal(t, image.Rect(0, 0, 3, 2), rgba.Bounds())
	assert.Equal(t, uint8(200), rgba.Pix[1])
}

func TestBlackmanWindow(t *testing.T) {
	w := blackmanWindow(9)
	assert.InDelta(t, 0, w[0], 1e-9)
	assert.InDelta(t, 0, w[8], 1e-9)
	assert.InDelta(t, 1, w[4], 1e-9)
}

func TestSmoothedSpectrumPeak(t *testing.T) {
	samples := make([]float32, fftInputSize)
	const bin = 64
	for i := range samples {
		samples[i] = float32(1e-3 * math.Sin(2*math.Pi*bin*float64(i)/fftInputSize))
	}
	last := make([]float64, textureWidth)
	var spectrum []float32
	for i := 0; i < 40; i++ {
		spectrum = smoothedSpectrum(samples, blackmanWindow(fftInputSize), last)
	}
	peak := 0
	for i := range spectrum {
		if spectrum[i] > spectrum[peak] {
			peak = i
		}
	}
	assert.Equal(t, bin, peak)
	// 0.42e-3 after the window is about -67.5 dB
	assert.InDelta(t, 0.464, spectrum[bin], 0.01)
	assert.Less(t, spectrum[bin+40], float32(0.5))
}

func TestScaleDecibels(t *testing.T) {
	assert.Equal(t, 0.0, scaleDecibels(-120))
	assert.Equal(t, 1.0, scaleDecibels(0))
	assert.InDelta(t, 0.5, scaleDecibels(-65), 1e-9)
}

func TestMicChannelHistory(t *testing.T) {
	dev := graphicstest.NewDevice(10, 10)
	mc, err := NewMicChannel(dev, audio.NewNullDevice(22050))
	require.NoError(t, err)
	assert.Equal(t, 22050, mc.SampleRate())

	mc.push([]float32{0.25, 0.5, 1})
	got := mc.recentSamples(3)
	assert.Equal(t, []float32{0.25, 0.5, 1}, got)

	mc.Update(&Uniforms{})
	pix := dev.TexturePixels(mc.GetTextureID())
	require.Len(t, pix, textureWidth*textureHeight*4)
	// newest waveform sample is 1.0, scaled to 255
	assert.Equal(t, byte(255), pix[(2*textureWidth-1)*4])
	// silence maps to mid-grey
	assert.Equal(t, byte(128), pix[textureWidth*4])

	mc.Destroy()
	assert.Zero(t, dev.LiveTextures())
	assert.Empty(t, dev.Errors)
}
