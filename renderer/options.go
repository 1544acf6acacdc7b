package renderer

import (
	"time"

	"github.com/richinsley/shadercanvas/graphics"
)

// Translator converts patched GLSL ES source to the desktop dialect and
// reports how uniform names were mapped.
type Translator interface {
	TranslateFragment(source string) (code string, names map[string]string, err error)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPointer supplies the host cursor used for iMouse.
func WithPointer(p graphics.Pointer) Option {
	return func(r *Renderer) { r.pointer = p }
}

// WithOutput sets the framebuffer the composite is drawn into.
func WithOutput(o OutputTarget) Option {
	return func(r *Renderer) {
		if o != nil {
			r.output = o
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTranslator routes fragment sources through t before compiling.
func WithTranslator(t Translator) Option {
	return func(r *Renderer) { r.translator = t }
}

// WithVersion sets the version directive injected into sources without one.
func WithVersion(v string) Option {
	return func(r *Renderer) {
		if v != "" {
			r.version = v
		}
	}
}
