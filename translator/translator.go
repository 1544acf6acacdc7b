// Package translator converts WebGL2 fragment shaders to desktop GLSL with
// goshadertranslator.
package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"

	"github.com/richinsley/shadercanvas"
)

// Output selects the GLSL dialect produced by the translator.
type Output string

const (
	GLSL410 Output = "glsl410"
	GLSL330 Output = "glsl330"
)

// Translator wraps a lazily created gst.ShaderTranslator. It satisfies
// renderer.Translator.
type Translator struct {
	ctx    context.Context
	output Output

	once sync.Once
	mu   sync.Mutex
	t    *gst.ShaderTranslator
	err  error
}

// New returns a translator producing output. The underlying translator is
// created on first use.
func New(ctx context.Context, output Output) *Translator {
	if output == "" {
		output = GLSL410
	}
	return &Translator{ctx: ctx, output: output}
}

func (t *Translator) get() (*gst.ShaderTranslator, error) {
	t.once.Do(func() {
		t.t, t.err = gst.NewShaderTranslator(t.ctx)
		if t.err != nil {
			t.err = fmt.Errorf("failed to create shader translator: %w", t.err)
			return
		}
		shadercanvas.Logger().Debug("shader translator ready", "output", string(t.output))
	})
	return t.t, t.err
}

// TranslateFragment translates a GLSL ES 3.00 fragment source and returns
// the translated code with a map from source uniform names to the names
// used in the output.
func (t *Translator) TranslateFragment(source string) (string, map[string]string, error) {
	tr, err := t.get()
	if err != nil {
		return "", nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	format := gst.OutputFormatGLSL410
	if t.output == GLSL330 {
		format = gst.OutputFormatGLSL330
	}
	res, err := tr.TranslateShader(source, "fragment", gst.ShaderSpecWebGL2, format)
	if err != nil {
		return "", nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}
	return res.Code, mappedNames(res.Variables), nil
}

func mappedNames(vars map[string]gst.ShaderVariable) map[string]string {
	names := make(map[string]string, len(vars))
	for name, v := range vars {
		if v.MappedName != "" {
			names[name] = v.MappedName
		}
	}
	return names
}
