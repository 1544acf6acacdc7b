package graphicstest

// Pointer is a settable graphics.Pointer.
type Pointer struct {
	X, Y    float64
	Present bool
	Down    bool
}

// Move places the cursor at (x, y) and marks it present.
func (p *Pointer) Move(x, y float64) {
	p.X, p.Y, p.Present = x, y, true
}

func (p *Pointer) CursorPos() (float64, float64, bool) { return p.X, p.Y, p.Present }
func (p *Pointer) ButtonDown() bool                    { return p.Down }
