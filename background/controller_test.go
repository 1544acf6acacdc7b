package background

import (
	"bytes"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/shadercanvas"
	"github.com/richinsley/shadercanvas/graphics"
	"github.com/richinsley/shadercanvas/graphics/graphicstest"
	"github.com/richinsley/shadercanvas/inputs"
	"github.com/richinsley/shadercanvas/options"
	"github.com/richinsley/shadercanvas/renderer"
)

type fakeEditor struct {
	mu     sync.Mutex
	source string
	auto   bool
}

func (e *fakeEditor) CurrentSource() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

func (e *fakeEditor) AutoCompile() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.auto
}

type fakeFrameRate struct {
	vsync bool
	fps   int
}

func (f *fakeFrameRate) Vsync() bool       { return f.vsync }
func (f *fakeFrameRate) SetVsync(v bool)   { f.vsync = v }
func (f *fakeFrameRate) MaxFPS() int       { return f.fps }
func (f *fakeFrameRate) SetMaxFPS(fps int) { f.fps = fps }

func shaderSource(tag string) string {
	return "// " + tag + "\nvoid mainImage(out vec4 c, in vec2 p) { c = vec4(p / iResolution.xy, 0.5, 1.0); }\n"
}

// compiles counts fragment compiles whose source contains tag.
func compiles(dev *graphicstest.Device, tag string) int {
	n := 0
	for _, src := range dev.Compiled {
		if strings.Contains(src, "// "+tag+"\n") {
			n++
		}
	}
	return n
}

func newTestController(t *testing.T, editor *fakeEditor, opts ...Option) (*Controller, *graphicstest.Device) {
	t.Helper()
	dev := graphicstest.NewDevice(200, 100)
	settings := options.Defaults()
	settings.FadeInSeconds = 0
	opts = append([]Option{WithSettings(settings)}, opts...)
	c := New(func() *renderer.Renderer { return renderer.New(dev) }, editor, opts...)
	return c, dev
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := shadercanvas.Logger()
	shadercanvas.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { shadercanvas.SetLogger(orig) })
	return &buf
}

func TestFallbackRoundTrip(t *testing.T) {
	c, dev := newTestController(t, &fakeEditor{auto: true})
	assert.True(t, c.IsEnabled())
	assert.False(t, c.IsRendererReady())

	c.RenderFrame(200, 100, 1, 0, 0)
	assert.True(t, c.IsRendererReady())
	require.NotNil(t, c.Renderer().Program())
	require.Len(t, dev.Draws, 2)
	assert.Empty(t, dev.Errors)
}

func TestCompileDeferredUntilFirstFrame(t *testing.T) {
	c, dev := newTestController(t, &fakeEditor{source: shaderSource("buffer"), auto: true})

	c.OnSourceSaved(shaderSource("saved"))
	c.RequestManualCompile()
	assert.Empty(t, dev.Compiled)
	assert.Nil(t, c.Renderer())

	c.RenderFrame(200, 100, 1, 0, 0)
	assert.Equal(t, 1, compiles(dev, "buffer"))
	assert.Zero(t, compiles(dev, "saved"))
	assert.True(t, c.IsRendererReady())
}

func TestFailedCompilePreservesProgram(t *testing.T) {
	editor := &fakeEditor{source: shaderSource("good"), auto: true}
	c, dev := newTestController(t, editor)
	c.RenderFrame(200, 100, 1, 0, 0)
	require.True(t, c.IsRendererReady())
	good := c.Renderer().Program()

	c.OnSourceSaved("#error broken\n" + shaderSource("bad"))
	for i := int64(1); i <= 4; i++ {
		c.RenderFrame(200, 100, 1, float64(i), i)
	}
	assert.Equal(t, 1, compiles(dev, "bad"), "failed shader must not be retried")
	assert.True(t, c.IsRendererReady())
	assert.Same(t, good, c.Renderer().Program())
	assert.True(t, dev.IsProgram(good.ID))
	assert.Equal(t, good.ID, dev.Draws[len(dev.Draws)-2].Program)

	c.OnSourceSaved(shaderSource("fixed"))
	c.RenderFrame(200, 100, 1, 5, 5)
	assert.Equal(t, 1, compiles(dev, "fixed"))
	assert.NotSame(t, good, c.Renderer().Program())
	assert.False(t, dev.IsProgram(good.ID))
}

func TestLastWriterWins(t *testing.T) {
	c, dev := newTestController(t, &fakeEditor{source: shaderSource("buffer"), auto: true})
	c.RenderFrame(200, 100, 1, 0, 0)

	c.OnSourceSaved(shaderSource("first"))
	c.OnSourceSaved(shaderSource("second"))
	c.RenderFrame(200, 100, 1, 1, 1)
	c.RenderFrame(200, 100, 1, 2, 2)

	assert.Zero(t, compiles(dev, "first"))
	assert.Equal(t, 1, compiles(dev, "second"))
}

func TestConcurrentSavesCompileOnce(t *testing.T) {
	c, dev := newTestController(t, &fakeEditor{source: shaderSource("buffer"), auto: true})
	c.RenderFrame(200, 100, 1, 0, 0)

	tags := []string{"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7"}
	var wg sync.WaitGroup
	for _, tag := range tags {
		wg.Add(1)
		go func(tag string) {
			defer wg.Done()
			c.OnSourceSaved(shaderSource(tag))
		}(tag)
	}
	wg.Wait()
	c.RenderFrame(200, 100, 1, 1, 1)

	total := 0
	for _, tag := range tags {
		total += compiles(dev, tag)
	}
	assert.Equal(t, 1, total)
	assert.True(t, c.IsRendererReady())
}

func TestDisableTearsDown(t *testing.T) {
	c, dev := newTestController(t, &fakeEditor{auto: true})
	c.RenderFrame(200, 100, 1, 0, 0)
	require.True(t, c.IsRendererReady())

	c.SetEnabled(false)
	assert.False(t, c.IsEnabled())
	assert.False(t, c.IsRendererReady())
	assert.Nil(t, c.Renderer())

	draws := len(dev.Draws)
	c.RenderFrame(200, 100, 1, 1, 1)
	assert.Len(t, dev.Draws, draws)
	assert.Zero(t, dev.LivePrograms())
	assert.Zero(t, dev.LiveTextures())
	assert.Zero(t, dev.LiveFramebuffers())
	assert.Zero(t, dev.LiveBuffers())
	assert.Empty(t, dev.Errors)

	c.SetEnabled(true)
	c.RenderFrame(200, 100, 1, 2, 2)
	assert.True(t, c.IsRendererReady())
}

func TestDisableWinsOverPendingCompile(t *testing.T) {
	c, dev := newTestController(t, &fakeEditor{source: shaderSource("buffer"), auto: true})
	c.RenderFrame(200, 100, 1, 0, 0)

	c.OnSourceSaved(shaderSource("pending"))
	c.SetEnabled(false)
	c.RenderFrame(200, 100, 1, 1, 1)

	assert.Zero(t, compiles(dev, "pending"))
	assert.Zero(t, dev.LivePrograms())
}

func TestManualCompileWithoutAutoCompile(t *testing.T) {
	editor := &fakeEditor{source: shaderSource("manual"), auto: false}
	c, dev := newTestController(t, editor)

	c.RenderFrame(200, 100, 1, 0, 0)
	c.OnSourceSaved(shaderSource("ignored"))
	c.RenderFrame(200, 100, 1, 1, 1)
	assert.False(t, c.IsRendererReady())
	assert.Zero(t, compiles(dev, "manual"))
	assert.Zero(t, compiles(dev, "ignored"))

	c.RequestManualCompile()
	c.RenderFrame(200, 100, 1, 2, 2)
	assert.True(t, c.IsRendererReady())
	assert.Equal(t, 1, compiles(dev, "manual"))

	editor.mu.Lock()
	editor.source = shaderSource("again")
	editor.mu.Unlock()
	c.CompileCurrentShader()
	c.RenderFrame(200, 100, 1, 3, 3)
	assert.Equal(t, 1, compiles(dev, "again"))
}

func TestRenderFramePreservesHostState(t *testing.T) {
	c, dev := newTestController(t, &fakeEditor{auto: true})
	c.RenderFrame(200, 100, 1, 0, 0)

	hostTex := dev.CreateTexture()
	dev.Enable(graphics.DepthTest)
	dev.Enable(graphics.ScissorTest)
	dev.DepthMask(true)
	dev.ColorMask(true, false, true, false)
	dev.Scissor(graphics.Rect{X: 3, Y: 4, Width: 50, Height: 60})
	dev.Viewport(graphics.Rect{X: 10, Y: 10, Width: 180, Height: 80})
	dev.BlendFuncSeparate(graphics.One, graphics.One, graphics.One, graphics.Zero)
	dev.BlendEquationSeparate(graphics.FuncSubtract, graphics.FuncAdd)
	dev.ActiveTexture(graphics.Texture0 + 3)
	dev.BindTexture(hostTex)
	before := graphics.Capture(dev)

	c.SetChannelMedia(2, image.NewRGBA(image.Rect(0, 0, 8, 4)), inputs.DefaultSampler)
	c.OnSourceSaved(shaderSource("next"))
	for i := int64(1); i <= 3; i++ {
		c.RenderFrame(200, 100, 0.5, float64(i), i)
		assert.True(t, before.Equal(graphics.Capture(dev)), "frame %d", i)
	}
	assert.Equal(t, 1, compiles(dev, "next"))
	assert.Empty(t, dev.Errors)
}

func TestChannelMediaBound(t *testing.T) {
	c, dev := newTestController(t, &fakeEditor{auto: true})
	c.SetChannelMedia(1, image.NewRGBA(image.Rect(0, 0, 8, 4)), inputs.DefaultSampler)
	c.SetChannelMedia(7, image.NewRGBA(image.Rect(0, 0, 2, 2)), inputs.DefaultSampler)
	c.RenderFrame(200, 100, 1, 0, 0)

	require.Len(t, dev.Draws, 2)
	tex := dev.Draws[0].Textures[graphics.Texture0+1]
	require.NotZero(t, tex)
	w, h := dev.TextureSize(tex)
	assert.Equal(t, [2]int32{8, 4}, [2]int32{w, h})

	// media survives a disable/enable cycle
	c.SetEnabled(false)
	c.RenderFrame(200, 100, 1, 1, 1)
	c.SetEnabled(true)
	c.RenderFrame(200, 100, 1, 2, 2)
	tex = dev.Draws[len(dev.Draws)-2].Textures[graphics.Texture0+1]
	w, h = dev.TextureSize(tex)
	assert.Equal(t, [2]int32{8, 4}, [2]int32{w, h})
}

func TestChannelMediaSampler(t *testing.T) {
	c, dev := newTestController(t, &fakeEditor{auto: true})
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})

	c.SetChannelMedia(0, img, inputs.Sampler{Filter: "nearest", Wrap: "clamp", VFlip: true})
	c.SetChannelMedia(1, img, inputs.DefaultSampler)
	c.RenderFrame(200, 100, 1, 0, 0)

	require.Len(t, dev.Draws, 2)
	flipped := dev.TexturePixels(dev.Draws[0].Textures[graphics.Texture0])
	require.Len(t, flipped, 8)
	assert.Equal(t, []byte{0, 0, 255, 255, 255, 0, 0, 255}, flipped)

	upright := dev.TexturePixels(dev.Draws[0].Textures[graphics.Texture0+1])
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, upright)
}

func TestFrameRateOverride(t *testing.T) {
	fr := &fakeFrameRate{vsync: true, fps: 60}
	c, _ := newTestController(t, &fakeEditor{auto: true}, WithFrameRate(fr))

	s := c.Settings()
	s.FramerateOverride = true
	s.FramerateLimit = 1000
	s.DisableVsync = true
	c.SetSettings(s)
	c.RenderFrame(200, 100, 1, 0, 0)
	assert.Equal(t, options.MaxFramerateLimit, fr.fps)
	assert.False(t, fr.vsync)

	s.FramerateLimit = 10
	c.SetSettings(s)
	c.RenderFrame(200, 100, 1, 1, 1)
	assert.Equal(t, options.MinFramerateLimit, fr.fps)

	s.FramerateOverride = false
	c.SetSettings(s)
	c.RenderFrame(200, 100, 1, 2, 2)
	assert.Equal(t, 60, fr.fps)
	assert.True(t, fr.vsync)

	s.FramerateOverride = true
	s.FramerateLimit = 144
	c.SetSettings(s)
	c.RenderFrame(200, 100, 1, 3, 3)
	assert.Equal(t, 144, fr.fps)
	c.Close()
	assert.Equal(t, 60, fr.fps)
	assert.True(t, fr.vsync)
}

func TestFade(t *testing.T) {
	var f fade
	assert.Equal(t, float32(0.8), f.alpha(0.8, 3))

	f.start(1)
	assert.Zero(t, f.alpha(1, 10))
	assert.InDelta(t, 0.75, f.alpha(1, 10.5), 1e-4)
	assert.Equal(t, float32(0.5), f.alpha(0.5, 11.5))
	assert.Equal(t, float32(0.5), f.alpha(0.5, 12))

	f.start(0)
	assert.Equal(t, float32(0.3), f.alpha(0.3, 0))
}

func TestTaskSlotCleanupWins(t *testing.T) {
	var s taskSlot
	s.postCompile()
	r := renderer.New(graphicstest.NewDevice(1, 1))
	s.postCleanup(r)
	s.postCompile()

	compile, cleanups := s.take()
	assert.False(t, compile)
	assert.Equal(t, []*renderer.Renderer{r}, cleanups)

	compile, cleanups = s.take()
	assert.False(t, compile)
	assert.Empty(t, cleanups)
}

func TestDiagnosticLogging(t *testing.T) {
	logs := captureLogs(t)
	c, _ := newTestController(t, &fakeEditor{auto: true})
	c.RenderFrame(200, 100, 1, 0, 0)
	assert.NotContains(t, logs.String(), "first render pass")

	s := c.Settings()
	s.DiagnosticLogging = true
	c.SetSettings(s)
	c.SetEnabled(false)
	c.SetEnabled(true)
	c.RenderFrame(200, 100, 1, 1, 1)
	assert.Contains(t, logs.String(), "shader background enabled")
	assert.Contains(t, logs.String(), "auto-compiling shader during render pass")
}

func TestFPSDiagnostics(t *testing.T) {
	logs := captureLogs(t)
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	settings := options.Defaults()
	settings.DiagnosticLogging = true
	settings.FadeInSeconds = 0
	dev := graphicstest.NewDevice(10, 10)
	c := New(func() *renderer.Renderer { return renderer.New(dev) }, &fakeEditor{auto: true},
		WithSettings(settings), WithClock(func() time.Time { return now }))

	for i := int64(0); i < 40; i++ {
		c.RenderFrame(10, 10, 1, float64(i)/30, i)
		now = now.Add(time.Second / 30)
	}
	assert.Equal(t, 1, strings.Count(logs.String(), "shader background fps"))
}

func TestCloseReleasesEverything(t *testing.T) {
	c, dev := newTestController(t, &fakeEditor{auto: true})
	c.RenderFrame(200, 100, 1, 0, 0)
	c.Close()

	assert.False(t, c.IsEnabled())
	assert.False(t, c.IsRendererReady())
	assert.Zero(t, dev.LivePrograms())
	assert.Zero(t, dev.LiveTextures())
	assert.Empty(t, dev.Errors)
}
