package graphics

// Context defines the interface for the host window's OpenGL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
}

// Pointer reports the host cursor. Positions are in framebuffer pixels
// with the origin at the top-left corner.
type Pointer interface {
	// CursorPos returns the cursor position. ok is false when the host has
	// no cursor to report.
	CursorPos() (x, y float64, ok bool)
	// ButtonDown reports whether the primary button is held.
	ButtonDown() bool
}
