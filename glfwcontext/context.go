package glfwcontext

import (
	"runtime"
	"time"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/shadercanvas"
	"github.com/richinsley/shadercanvas/options"
)

// Context is a GLFW window with an OpenGL 4.1 core context. It implements
// graphics.Context, graphics.Pointer and background.FrameRate.
type Context struct {
	window *glfw.Window
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()

	vsync     bool
	maxFPS    int
	lastFrame time.Time
}

// New creates a window sized from opts.
func New(opts *options.ShaderOptions, title string) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(*opts.Width, *opts.Height, title, nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[glfw.Key]func()),
		vsync:        true,
	}
	win.SetKeyCallback(c.glfwKeyCallback)
	return c, nil
}

// RegisterKeyCallback runs f when key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

// CursorPos returns the cursor in framebuffer pixels.
func (c *Context) CursorPos() (float64, float64, bool) {
	if c.window == nil {
		return 0, 0, false
	}
	fbWidth, fbHeight := c.GetFramebufferSize()
	winWidth, winHeight := c.window.GetSize()
	scaleX, scaleY := 1.0, 1.0
	if winWidth > 0 && winHeight > 0 {
		scaleX = float64(fbWidth) / float64(winWidth)
		scaleY = float64(fbHeight) / float64(winHeight)
	}
	x, y := c.window.GetCursorPos()
	return x * scaleX, y * scaleY, true
}

func (c *Context) ButtonDown() bool {
	return c.window != nil && c.window.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press
}

func (c *Context) Vsync() bool { return c.vsync }

// SetVsync must be called with the context current.
func (c *Context) SetVsync(on bool) {
	if on == c.vsync {
		return
	}
	c.vsync = on
	if on {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
}

func (c *Context) MaxFPS() int { return c.maxFPS }

// SetMaxFPS caps the frame rate in EndFrame. Zero removes the cap.
func (c *Context) SetMaxFPS(fps int) { c.maxFPS = fps }

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

// EndFrame presents the frame, waits out the frame cap and polls events.
func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	if c.maxFPS > 0 {
		budget := time.Second / time.Duration(c.maxFPS)
		if spent := time.Since(c.lastFrame); spent < budget {
			time.Sleep(budget - spent)
		}
	}
	c.lastFrame = time.Now()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// Window returns the underlying *glfw.Window.
func (c *Context) Window() *glfw.Window {
	return c.window
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	shadercanvas.Logger().Info("GLFW initialized")
	return nil
}

// TerminateGraphics shuts GLFW down. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	shadercanvas.Logger().Info("GLFW terminated")
}
