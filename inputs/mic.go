package inputs

import (
	"fmt"
	"math"
	"sync"

	fft "github.com/mjibson/go-dsp/fft"

	"github.com/richinsley/shadercanvas"
	"github.com/richinsley/shadercanvas/audio"
	"github.com/richinsley/shadercanvas/graphics"
)

const (
	textureWidth  = 512
	textureHeight = 2
	// Shadertoy uses an fftSize of 2048, which gives 1024 frequency bins.
	fftInputSize      = 2048
	historyBufferSize = fftInputSize * 4

	minDecibels     = -100.0
	maxDecibels     = -30.0
	smoothingFactor = 0.8
)

// MicChannel turns an audio stream into Shadertoy's 512x2 sound texture:
// row 0 holds the smoothed spectrum, row 1 the waveform.
type MicChannel struct {
	dev         graphics.TextureDevice
	textureID   uint32
	audioDevice audio.Device

	mutex         sync.Mutex
	historyBuffer []float32
	bufferPos     int

	window  []float64
	lastFFT []float64
	pixels  []byte
}

// NewMicChannel starts device and allocates the sound texture.
func NewMicChannel(dev graphics.TextureDevice, device audio.Device) (*MicChannel, error) {
	if device == nil {
		device = audio.NewNullDevice(audio.DefaultSampleRate)
	}
	audioChan, err := device.Start()
	if err != nil {
		return nil, fmt.Errorf("could not start audio device: %w", err)
	}

	mc := &MicChannel{
		dev:           dev,
		audioDevice:   device,
		historyBuffer: make([]float32, historyBufferSize),
		window:        blackmanWindow(fftInputSize),
		lastFFT:       make([]float64, textureWidth),
		pixels:        make([]byte, textureWidth*textureHeight*4),
	}
	for i := range mc.lastFFT {
		mc.lastFFT[i] = minDecibels
	}
	mc.textureID = uploadRGBA(dev, textureWidth, textureHeight, mc.pixels, Sampler{Filter: "linear", Wrap: "clamp"})

	if audioChan != nil {
		go mc.listenForAudio(audioChan)
	}
	shadercanvas.Logger().Info("mic channel started", "rate", device.SampleRate())
	return mc, nil
}

// listenForAudio consumes the device stream into the history ring buffer.
func (c *MicChannel) listenForAudio(audioChan <-chan []float32) {
	for samples := range audioChan {
		c.push(samples)
	}
	shadercanvas.Logger().Debug("mic channel audio stream closed")
}

func (c *MicChannel) push(samples []float32) {
	c.mutex.Lock()
	for _, sample := range samples {
		c.historyBuffer[c.bufferPos] = sample
		c.bufferPos = (c.bufferPos + 1) % historyBufferSize
	}
	c.mutex.Unlock()
}

// recentSamples returns the latest numSamples samples, oldest first.
func (c *MicChannel) recentSamples(numSamples int) []float32 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	out := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		index := (c.bufferPos - numSamples + i + historyBufferSize) % historyBufferSize
		out[i] = c.historyBuffer[index]
	}
	return out
}

// Update recomputes the spectrum from the newest history and uploads it.
func (c *MicChannel) Update(uniforms *Uniforms) {
	samples := c.recentSamples(fftInputSize)
	spectrum := smoothedSpectrum(samples, c.window, c.lastFFT)

	for i := 0; i < textureWidth; i++ {
		c.pixels[i*4] = unitToByte(spectrum[i])
	}
	wave := samples[len(samples)-textureWidth:]
	for i := 0; i < textureWidth; i++ {
		c.pixels[(textureWidth+i)*4] = unitToByte((wave[i] + 1) * 0.5)
	}

	c.dev.BindTexture(c.textureID)
	c.dev.TexImage2D(textureWidth, textureHeight, graphics.RGBA8, c.pixels)
	c.dev.BindTexture(0)
}

func (c *MicChannel) Destroy() {
	if c.audioDevice != nil {
		if err := c.audioDevice.Stop(); err != nil {
			shadercanvas.Logger().Warn("stopping audio device failed", "err", err)
		}
	}
	if c.textureID != 0 {
		c.dev.DeleteTexture(c.textureID)
		c.textureID = 0
	}
}

func (c *MicChannel) GetCType() string     { return "mic" }
func (c *MicChannel) GetTextureID() uint32 { return c.textureID }
func (c *MicChannel) SampleRate() int      { return c.audioDevice.SampleRate() }

func (c *MicChannel) ChannelRes() [3]float32 {
	return [3]float32{textureWidth, textureHeight, 0}
}

// smoothedSpectrum windows samples, runs an FFT and folds the dB magnitude
// of the first textureWidth bins into last with exponential smoothing. It
// returns the smoothed values scaled to [0, 1].
func smoothedSpectrum(samples []float32, window, last []float64) []float32 {
	windowed := make([]float64, len(samples))
	for i, s := range samples {
		windowed[i] = float64(s) * window[i]
	}
	bins := fft.FFTReal(windowed)

	out := make([]float32, len(last))
	for i := range last {
		re, im := real(bins[i]), imag(bins[i])
		magnitude := math.Sqrt(re*re+im*im) * (2.0 / float64(len(samples)))
		db := 20 * math.Log10(magnitude+1e-9)
		last[i] = smoothingFactor*last[i] + (1-smoothingFactor)*db
		out[i] = float32(scaleDecibels(last[i]))
	}
	return out
}

func scaleDecibels(db float64) float64 {
	switch {
	case db <= minDecibels:
		return 0
	case db >= maxDecibels:
		return 1
	}
	return (db - minDecibels) / (maxDecibels - minDecibels)
}

func unitToByte(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

// blackmanWindow generates a Blackman window, as used by Shadertoy.
func blackmanWindow(size int) []float64 {
	window := make([]float64, size)
	const a0, a1, a2 = 0.42, 0.5, 0.08
	invSize := 1.0 / float64(size-1)
	for i := range window {
		t := float64(i) * invSize
		window[i] = a0 - a1*math.Cos(2*math.Pi*t) + a2*math.Cos(4*math.Pi*t)
	}
	return window
}
