package options

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := Defaults()
	assert.True(t, s.AutoCompile)
	assert.False(t, s.DiagnosticLogging)
	assert.Equal(t, 1.0, s.Quality)
	assert.Equal(t, 60, s.FramerateLimit)
	assert.Equal(t, 0.5, s.FadeInSeconds)
	assert.Equal(t, "330", s.GLSLVersion)
	assert.Empty(t, s.Channels)
}

func TestParseOverlaysDefaults(t *testing.T) {
	s, err := Parse([]byte("quality: 0.5\ntranslate: true\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.Quality)
	assert.True(t, s.Translate)
	assert.True(t, s.AutoCompile)
	assert.Equal(t, 60, s.FramerateLimit)
}

func TestParseClamps(t *testing.T) {
	s, err := Parse([]byte("quality: 0\nframerate_limit: 1000\nfade_in_seconds: -2\nspeed: -1\n"))
	require.NoError(t, err)
	assert.Equal(t, MinQuality, s.Quality)
	assert.Equal(t, MaxFramerateLimit, s.FramerateLimit)
	assert.Zero(t, s.FadeInSeconds)
	assert.Zero(t, s.Speed)

	s, err = Parse([]byte("framerate_limit: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, MinFramerateLimit, s.FramerateLimit)
}

func TestParseChannels(t *testing.T) {
	s, err := Parse([]byte(`
channels:
  - index: 1
    kind: image
    path: wood.png
    vflip: true
  - index: 2
    kind: mic
`))
	require.NoError(t, err)
	require.Len(t, s.Channels, 2)
	assert.Equal(t, ChannelConfig{Index: 1, Kind: "image", Path: "wood.png", VFlip: true}, s.Channels[0])
	assert.Equal(t, "mic", s.Channels[1].Kind)

	_, err = Parse([]byte("channels:\n  - index: 4\n    kind: mic\n"))
	assert.ErrorContains(t, err, "out of range")
	_, err = Parse([]byte("channels:\n  - index: 0\n    kind: image\n"))
	assert.ErrorContains(t, err, "requires a path")
	_, err = Parse([]byte("channels:\n  - index: 0\n    kind: hologram\n"))
	assert.ErrorContains(t, err, "unknown kind")
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("quality: [oops"))
	assert.ErrorContains(t, err, "parsing settings")
}

func TestLoadAndWrite(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	s.Quality = 0.25
	s.DisableVsync = true

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, s.WriteYAML(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRegister(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	o := Register(fs)
	require.NoError(t, fs.Parse([]string{"-file", "bg.frag", "-channel2", "mic", "-v"}))
	assert.Equal(t, "bg.frag", *o.ShaderFile)
	assert.True(t, *o.Verbose)
	assert.Equal(t, [4]string{"", "", "mic", ""}, o.Channels())
	assert.Equal(t, 1280, *o.Width)
}
