package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/shadercanvas/api"
	"github.com/richinsley/shadercanvas/inputs"
	"github.com/richinsley/shadercanvas/options"
)

func TestFileEditorReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.frag")
	require.NoError(t, os.WriteFile(path, []byte("void main() {}"), 0o644))

	e := newFileEditor(path, "", true)
	src, changed, err := e.reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "void main() {}", src)
	assert.Equal(t, src, e.CurrentSource())

	_, changed, err = e.reload()
	require.NoError(t, err)
	assert.False(t, changed)

	assert.True(t, e.AutoCompile())
	assert.False(t, e.toggleAutoCompile())
	assert.False(t, e.AutoCompile())
}

func TestFileEditorWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.frag")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	e := newFileEditor(path, "a", true)

	var mu sync.Mutex
	var saved []string
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, e.watch(ctx, func(s string) {
		mu.Lock()
		saved = append(saved, s)
		mu.Unlock()
	}))

	require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(saved) > 0 && saved[len(saved)-1] == "b"
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "b", e.CurrentSource())
}

func TestChannelFromFlag(t *testing.T) {
	_, ok := channelFromFlag(0, "")
	assert.False(t, ok)

	c, ok := channelFromFlag(1, "mic")
	require.True(t, ok)
	assert.Equal(t, options.ChannelConfig{Index: 1, Kind: "mic"}, c)

	c, _ = channelFromFlag(2, "clip.MP4")
	assert.Equal(t, "video", c.Kind)
	c, _ = channelFromFlag(2, "song.mp3")
	assert.Equal(t, "audio", c.Kind)
	c, _ = channelFromFlag(3, "wood.png")
	assert.Equal(t, "image", c.Kind)
	assert.Equal(t, "wood.png", c.Path)
}

func TestChannelConfigsFlagsOverride(t *testing.T) {
	settings := options.Defaults()
	settings.Channels = []options.ChannelConfig{
		{Index: 0, Kind: "image", Path: "a.png"},
		{Index: 2, Kind: "mic"},
	}
	got := channelConfigs(settings, [4]string{"", "", "b.png", ""})
	require.Len(t, got, 2)
	assert.Equal(t, "a.png", got[0].Path)
	assert.Equal(t, options.ChannelConfig{Index: 2, Kind: "image", Path: "b.png"}, got[1])
}

func TestChannelSamplers(t *testing.T) {
	s := configSampler(options.ChannelConfig{Kind: "image", VFlip: true})
	assert.Equal(t, inputs.Sampler{Filter: "mipmap", Wrap: "repeat", VFlip: true}, s)
	s = configSampler(options.ChannelConfig{Kind: "image", Filter: "nearest", Wrap: "clamp"})
	assert.Equal(t, inputs.Sampler{Filter: "nearest", Wrap: "clamp"}, s)

	s = shadertoySampler(api.Sampler{Filter: "linear", Wrap: "clamp", VFlip: "true"})
	assert.Equal(t, inputs.Sampler{Filter: "linear", Wrap: "clamp", VFlip: true}, s)
	s = shadertoySampler(api.Sampler{VFlip: "false"})
	assert.Equal(t, inputs.DefaultSampler, s)
}
