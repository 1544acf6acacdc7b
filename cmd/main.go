package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/shadercanvas"
	"github.com/richinsley/shadercanvas/api"
	"github.com/richinsley/shadercanvas/background"
	"github.com/richinsley/shadercanvas/glfwcontext"
	"github.com/richinsley/shadercanvas/graphics"
	"github.com/richinsley/shadercanvas/graphics/glcore"
	"github.com/richinsley/shadercanvas/options"
	"github.com/richinsley/shadercanvas/renderer"
	"github.com/richinsley/shadercanvas/shader"
	"github.com/richinsley/shadercanvas/translator"
)

func init() {
	runtime.LockOSThread()
}

// initialSource picks the starting shader: the watched file, a Shadertoy
// shader or the fallback preset.
func initialSource(ctx context.Context, opts *options.ShaderOptions) (string, *api.ShaderArgs, error) {
	if *opts.ShaderFile != "" {
		data, err := os.ReadFile(*opts.ShaderFile)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read shader file: %w", err)
		}
		return string(data), nil, nil
	}
	if *opts.ShaderID == "" {
		return shader.Fallback(), nil, nil
	}

	client := api.New(*opts.APIKey)
	if dir, err := os.UserCacheDir(); err == nil {
		client.CacheDir = filepath.Join(dir, "shadercanvas")
	}
	resp, err := client.ShaderFromID(ctx, *opts.ShaderID)
	if err != nil {
		return "", nil, fmt.Errorf("error fetching shader from ID: %w", err)
	}
	args, err := client.ShaderArgsFromResponse(ctx, resp)
	if err != nil {
		return "", nil, fmt.Errorf("error processing shader JSON: %w", err)
	}
	shadercanvas.Logger().Info("fetched shader", "title", args.Title, "complete", args.Complete)
	return args.Source(), args, nil
}

func main() {
	opts := options.Register(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("shadercanvas: live shader background")
		flag.PrintDefaults()
		return
	}

	level := slog.LevelInfo
	if *opts.Verbose {
		level = slog.LevelDebug
	}
	shadercanvas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	log := shadercanvas.Logger()

	settings, err := options.Load(*opts.SettingsFile)
	if err != nil {
		log.Error("failed to load settings", "err", err)
		os.Exit(1)
	}
	if *opts.Quality > 0 {
		settings.Quality = *opts.Quality
		if err := settings.Validate(); err != nil {
			log.Error("invalid settings", "err", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, shaderArgs, err := initialSource(ctx, opts)
	if err != nil {
		log.Error("failed to load initial shader", "err", err)
		os.Exit(1)
	}
	editor := newFileEditor(*opts.ShaderFile, source, settings.AutoCompile)

	if err := glfwcontext.InitGraphics(); err != nil {
		log.Error("failed to initialize GLFW", "err", err)
		os.Exit(1)
	}
	defer glfwcontext.TerminateGraphics()

	win, err := glfwcontext.New(opts, "shadercanvas")
	if err != nil {
		log.Error("failed to create window", "err", err)
		os.Exit(1)
	}
	defer win.Shutdown()
	win.MakeCurrent()
	if err := glcore.Init(); err != nil {
		log.Error("failed to initialize OpenGL", "err", err)
		os.Exit(1)
	}
	dev := glcore.New()
	log.Info("OpenGL ready", "version", dev.Version())

	renderOpts := []renderer.Option{renderer.WithPointer(win), renderer.WithVersion(settings.GLSLVersion)}
	if settings.Translate {
		renderOpts = append(renderOpts, renderer.WithTranslator(translator.New(ctx, translator.GLSL410)))
	}
	ctrl := background.New(
		func() *renderer.Renderer { return renderer.New(dev, renderOpts...) },
		editor,
		background.WithSettings(settings),
		background.WithFrameRate(win),
	)
	defer ctrl.Close()

	if shaderArgs != nil {
		for _, in := range shaderArgs.Inputs {
			if in != nil {
				ctrl.SetChannelMedia(in.Channel, in.Image, shadertoySampler(in.Sampler))
			}
		}
	}
	loadChannels(ctx, ctrl, channelConfigs(settings, opts.Channels()))

	if err := editor.watch(ctx, ctrl.OnSourceSaved); err != nil {
		log.Warn("shader file not watched", "err", err)
	}

	win.RegisterKeyCallback(glfw.KeyF5, ctrl.RequestManualCompile)
	win.RegisterKeyCallback(glfw.KeyF2, func() { ctrl.SetEnabled(!ctrl.IsEnabled()) })
	win.RegisterKeyCallback(glfw.KeyF3, func() {
		log.Info("auto compile toggled", "enabled", editor.toggleAutoCompile())
	})

	alpha := float32(*opts.Alpha)
	var frame int64
	for !win.ShouldClose() {
		w, h := win.GetFramebufferSize()
		dev.Viewport(graphics.Rect{Width: int32(w), Height: int32(h)})
		dev.ClearColor(0.08, 0.08, 0.1, 1)
		dev.Clear()

		ctrl.RenderFrame(w, h, alpha, win.Time(), frame)
		frame++
		win.EndFrame()
	}
}
