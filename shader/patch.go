package shader

import (
	"regexp"
	"strings"

	"github.com/richinsley/shadercanvas"
)

const (
	legacyOutput  = "gl_FragColor"
	patchedOutput = "fragmentColor"
)

var mainDecl = regexp.MustCompile(`\bvoid\s+main\s*\(`)

// standardUniform is a Shadertoy input the patcher declares when missing.
type standardUniform struct {
	name, decl string
}

// Declaration order matters for readability of the patched source only.
var standardUniforms = []standardUniform{
	{"iTime", "uniform float iTime;"},
	{"iResolution", "uniform vec3 iResolution;"},
	{"iMouse", "uniform vec4 iMouse;"},
	{"iFrame", "uniform int iFrame;"},
	{"iTimeDelta", "uniform float iTimeDelta;"},
	{"iDate", "uniform vec4 iDate;"},
	{"iSampleRate", "uniform float iSampleRate;"},
	{"iChannelTime", "uniform float iChannelTime[4];"},
	{"iChannelResolution", "uniform vec3 iChannelResolution[4];"},
	{"iChannel0", "uniform sampler2D iChannel0;"},
	{"iChannel1", "uniform sampler2D iChannel1;"},
	{"iChannel2", "uniform sampler2D iChannel2;"},
	{"iChannel3", "uniform sampler2D iChannel3;"},
}

// StandardUniformNames lists the uniform names the patcher recognises.
func StandardUniformNames() []string {
	names := make([]string, len(standardUniforms))
	for i, u := range standardUniforms {
		names[i] = u.name
	}
	return names
}

var uniformPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(standardUniforms))
	for _, u := range standardUniforms {
		m[u.name] = regexp.MustCompile(`\buniform\s+[\w\[\]]+\s+` + regexp.QuoteMeta(u.name) + `\b`)
	}
	return m
}()

// DeclaresUniform reports whether src declares a uniform called name. Only
// the name is compared; a declaration with an unexpected type still counts.
func DeclaresUniform(src, name string) bool {
	re, ok := uniformPatterns[name]
	if !ok {
		re = regexp.MustCompile(`\buniform\s+[\w\[\]]+\s+` + regexp.QuoteMeta(name) + `\b`)
	}
	return re.MatchString(src)
}

// Patched is the result of PatchFragment.
type Patched struct {
	Source string
	// LegacyOutput is set when gl_FragColor was rewritten.
	LegacyOutput bool
	// WrappedMainImage is set when a main() calling mainImage was appended.
	WrappedMainImage bool
	// Declared lists the uniforms the patcher added, in order.
	Declared []string
}

type patchConfig struct {
	version   string
	precision bool
}

// PatchOption configures PatchFragment and PatchVertex.
type PatchOption func(*patchConfig)

// WithVersion sets the directive injected when a source has none, e.g.
// "330 core" or "300 es".
func WithVersion(v string) PatchOption {
	return func(c *patchConfig) {
		if v != "" {
			c.version = v
		}
	}
}

// WithPrecision adds default float and int precision qualifiers to the
// header. GLSL ES sources need them.
func WithPrecision() PatchOption {
	return func(c *patchConfig) { c.precision = true }
}

func newPatchConfig(opts []PatchOption) patchConfig {
	c := patchConfig{version: DefaultVersion}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// ensureVersion returns src with a version directive as its first
// effective line, and the offset right after that line.
func ensureVersion(src, version string) (string, int) {
	if strings.HasPrefix(strings.TrimSpace(src), "#version") {
		start := strings.Index(src, "#version")
		end := strings.IndexByte(src[start:], '\n')
		if end < 0 {
			return src + "\n", len(src) + 1
		}
		return src, start + end + 1
	}
	directive := "#version " + version + "\n"
	return directive + src, len(directive)
}

// PatchFragment adapts a Shadertoy-style fragment source for compilation.
// It guarantees a version directive, rewrites gl_FragColor, declares any
// standard uniform the source does not already declare and wraps a
// mainImage entry point in a main() that forces opaque alpha.
//
// PatchFragment is a text transformation. It never fails and does not
// validate the result.
func PatchFragment(src string, opts ...PatchOption) Patched {
	cfg := newPatchConfig(opts)
	working, insertAt := ensureVersion(src, cfg.version)

	var (
		header strings.Builder
		out    Patched
	)
	if cfg.precision && !strings.Contains(working, "precision highp float") {
		header.WriteString("precision highp float;\nprecision highp int;\n")
	}

	hasMainImage := strings.Contains(working, "mainImage")
	if strings.Contains(working, legacyOutput) {
		working = strings.ReplaceAll(working, legacyOutput, patchedOutput)
		header.WriteString("out vec4 " + patchedOutput + ";\n")
		out.LegacyOutput = true
		shadercanvas.Logger().Warn("shader uses deprecated gl_FragColor output, rewriting", "replacement", patchedOutput)
	} else if !hasMainImage && !strings.Contains(working, "out vec4") {
		header.WriteString("out vec4 fragColor;\n")
	}

	for _, u := range standardUniforms {
		if DeclaresUniform(working, u.name) {
			continue
		}
		header.WriteString(u.decl)
		header.WriteByte('\n')
		out.Declared = append(out.Declared, u.name)
	}

	if header.Len() > 0 {
		working = working[:insertAt] + header.String() + working[insertAt:]
	}

	if hasMainImage && !mainDecl.MatchString(working) {
		working += "\nout vec4 fragColor;\n\nvoid main() {\n" +
			"    mainImage(fragColor, gl_FragCoord.xy);\n" +
			"    fragColor.a = 1.0;\n" +
			"}\n"
		out.WrappedMainImage = true
	}

	out.Source = working
	return out
}

// PatchVertex only guarantees the version directive.
func PatchVertex(src string, opts ...PatchOption) string {
	cfg := newPatchConfig(opts)
	working, _ := ensureVersion(src, cfg.version)
	return working
}
