package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/richinsley/shadercanvas"
)

func frameArgs(path string, frame int, out *bytes.Buffer) *ffmpeg.Stream {
	if frame < 0 {
		frame = 0
	}
	return ffmpeg.Input(path).
		Filter("select", ffmpeg.Args{fmt.Sprintf("gte(n,%d)", frame)}).
		Output("pipe:", ffmpeg.KwArgs{"vframes": 1, "format": "image2", "vcodec": "mjpeg"}).
		WithOutput(out)
}

// LoadVideoFrame extracts frame number frame of the video at path.
func LoadVideoFrame(ctx context.Context, path string, frame int) (image.Image, error) {
	var buf bytes.Buffer
	cmd := frameArgs(path, frame, &buf).Compile()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg for %s: %w", path, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		<-done
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("ffmpeg failed reading frame %d of %s: %w", frame, path, err)
		}
	}

	img, err := jpeg.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %d of %s: %w", frame, path, err)
	}
	shadercanvas.Logger().Debug("video frame loaded", "path", path, "frame", frame)
	return Fit(img, MaxTextureSize), nil
}
