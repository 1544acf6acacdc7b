package audio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/richinsley/shadercanvas"
)

// chunkSamples is the number of mono samples per emitted chunk.
const chunkSamples = 1024

// FileDevice decodes an audio file with ffmpeg and plays it out at real
// time as mono float32 samples.
type FileDevice struct {
	path       string
	sampleRate int
	loop       bool

	// command builds the decoder writing to w.
	command func(w io.Writer) *exec.Cmd

	mu      sync.Mutex
	cmd     *exec.Cmd
	out     chan []float32
	stopped bool
}

// NewFileDevice returns a device for path. With loop set, the file restarts
// when it ends.
func NewFileDevice(path string, sampleRate int, loop bool) *FileDevice {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	d := &FileDevice{path: path, sampleRate: sampleRate, loop: loop}
	d.command = d.stream
	return d
}

func (d *FileDevice) stream(w io.Writer) *exec.Cmd {
	input := ffmpeg.KwArgs{"re": ""}
	if d.loop {
		input["stream_loop"] = -1
	}
	return ffmpeg.Input(d.path, input).
		Output("pipe:", ffmpeg.KwArgs{"f": "f32le", "ac": 1, "ar": d.sampleRate, "vn": ""}).
		WithOutput(w).
		Compile()
}

func (d *FileDevice) Start() (<-chan []float32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cmd != nil {
		return nil, fmt.Errorf("audio file %s already started", d.path)
	}

	pr, pw := io.Pipe()
	cmd := d.command(pw)
	if err := cmd.Start(); err != nil {
		pw.Close()
		return nil, fmt.Errorf("failed to start ffmpeg for %s: %w", d.path, err)
	}
	d.cmd = cmd
	d.out = make(chan []float32, 16)
	d.stopped = false

	go func() {
		err := cmd.Wait()
		pw.CloseWithError(err)
	}()
	go d.pump(pr, d.out)

	shadercanvas.Logger().Info("audio file started", "path", d.path, "rate", d.sampleRate, "loop", d.loop)
	return d.out, nil
}

func (d *FileDevice) pump(r io.ReadCloser, out chan<- []float32) {
	defer close(out)
	defer r.Close()
	br := bufio.NewReaderSize(r, chunkSamples*4)
	buf := make([]byte, chunkSamples*4)
	for {
		n, err := io.ReadFull(br, buf)
		if n >= 4 {
			out <- DecodeFloat32LE(buf[:n-n%4])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && !d.isStopped() {
				shadercanvas.Logger().Error("audio file decode failed", "path", d.path, "err", err)
			}
			return
		}
	}
}

func (d *FileDevice) isStopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

func (d *FileDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cmd == nil || d.stopped {
		return nil
	}
	d.stopped = true
	cmd := d.cmd
	d.cmd = nil
	if cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func (d *FileDevice) SampleRate() int { return d.sampleRate }
