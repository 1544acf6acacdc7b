// Package audio provides sample producers for audio-reactive channels.
package audio

// We'll be using portaudio for audio input handling.
// macos:	brew install portaudio
// debian:	sudo apt-get install portaudio19-dev
// windows:	pacman -S mingw-w64-x86_64-portaudio

// DefaultSampleRate is reported when no device is configured.
const DefaultSampleRate = 44100

// Device produces a stream of mono sample chunks.
type Device interface {
	// Start begins audio processing and returns a receive-only channel of
	// audio chunks.
	Start() (<-chan []float32, error)
	// Stop terminates the audio stream and closes the channel.
	Stop() error
	// SampleRate returns the sample rate of the device.
	SampleRate() int
}

// NullDevice produces silence.
type NullDevice struct {
	rate int
}

func NewNullDevice(sampleRate int) *NullDevice {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &NullDevice{rate: sampleRate}
}

// Start returns a nil channel, which blocks forever on receive.
func (d *NullDevice) Start() (<-chan []float32, error) { return nil, nil }

func (d *NullDevice) Stop() error { return nil }

func (d *NullDevice) SampleRate() int { return d.rate }
