package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/richinsley/shadercanvas"
)

// Replaced in tests.
var (
	paInitialize     = portaudio.Initialize
	paTerminate      = portaudio.Terminate
	paDefaultHostAPI = portaudio.DefaultHostApi
)

// Microphone streams the default input device through portaudio. Stop
// releases portaudio; a later Start initializes it again.
type Microphone struct {
	sampleRate int
	channels   int

	mu          sync.Mutex
	initialized bool
	stream      *portaudio.Stream
	audioChan   chan []float32
	isStreaming bool
	dropped     int
}

// NewMicrophone initializes portaudio. channels may be 1 or 2; stereo
// input is downmixed to mono.
func NewMicrophone(sampleRate, channels int) (*Microphone, error) {
	if channels != 2 {
		channels = 1
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	m := &Microphone{sampleRate: sampleRate, channels: channels}
	if err := m.initialize(); err != nil {
		return nil, err
	}
	return m, nil
}

// initialize requires m.mu or exclusive access.
func (m *Microphone) initialize() error {
	if m.initialized {
		return nil
	}
	if err := paInitialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	m.initialized = true
	return nil
}

// terminate requires m.mu.
func (m *Microphone) terminate() error {
	if !m.initialized {
		return nil
	}
	m.initialized = false
	return paTerminate()
}

func (m *Microphone) audioCallback(in []float32) {
	var data []float32
	if m.channels == 2 {
		data = DownmixStereoToMono(in)
	} else {
		// portaudio reuses its buffer.
		data = make([]float32, len(in))
		copy(data, in)
	}

	select {
	case m.audioChan <- data:
	default:
		m.mu.Lock()
		m.dropped++
		dropped := m.dropped
		m.mu.Unlock()
		if dropped == 1 || dropped%256 == 0 {
			shadercanvas.Logger().Warn("audio channel buffer is full, dropping input", "dropped", dropped)
		}
	}
}

func (m *Microphone) Start() (<-chan []float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isStreaming {
		return nil, fmt.Errorf("microphone already started")
	}

	if err := m.initialize(); err != nil {
		return nil, err
	}
	m.audioChan = make(chan []float32, 16)

	host, err := paDefaultHostAPI()
	if err != nil {
		close(m.audioChan)
		return nil, err
	}
	if host.DefaultInputDevice == nil {
		close(m.audioChan)
		return nil, fmt.Errorf("no default input device on %s", host.Name)
	}

	params := portaudio.HighLatencyParameters(host.DefaultInputDevice, nil)
	params.Input.Channels = m.channels
	params.SampleRate = float64(m.sampleRate)

	stream, err := portaudio.OpenStream(params, m.audioCallback)
	if err != nil {
		close(m.audioChan)
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		close(m.audioChan)
		return nil, fmt.Errorf("failed to start audio stream: %w", err)
	}
	m.stream = stream
	m.isStreaming = true
	shadercanvas.Logger().Info("microphone started", "device", host.DefaultInputDevice.Name, "rate", m.sampleRate, "channels", m.channels)

	return m.audioChan, nil
}

func (m *Microphone) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isStreaming {
		return m.terminate()
	}
	m.isStreaming = false
	err := m.stream.Close()
	m.stream = nil
	close(m.audioChan)
	if terr := m.terminate(); err == nil {
		err = terr
	}
	return err
}

func (m *Microphone) SampleRate() int {
	return m.sampleRate
}
