package shader

import (
	"bytes"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/shadercanvas"
)

func countDecl(src, name string) int {
	re := regexp.MustCompile(`\buniform\s+[\w\[\]]+\s+` + regexp.QuoteMeta(name) + `\b`)
	return len(re.FindAllStringIndex(src, -1))
}

func firstLine(src string) string {
	line, _, _ := strings.Cut(src, "\n")
	return line
}

func TestPatchFragmentAddsVersion(t *testing.T) {
	p := PatchFragment("void main() { fragColor = vec4(1.0); }")
	assert.Equal(t, "#version 330", firstLine(p.Source))
	assert.Equal(t, StandardUniformNames(), p.Declared)
	assert.Contains(t, p.Source, "out vec4 fragColor;\n")
	assert.False(t, p.LegacyOutput)
	assert.False(t, p.WrappedMainImage)
}

func TestPatchFragmentKeepsExistingVersion(t *testing.T) {
	src := "\n#version 330 core\nout vec4 color;\nvoid main() { color = vec4(iTime); }\n"
	p := PatchFragment(src, WithVersion("410 core"))

	lines := strings.Split(strings.TrimSpace(p.Source), "\n")
	assert.Equal(t, "#version 330 core", lines[0])
	assert.Equal(t, "uniform float iTime;", lines[1])
	assert.NotContains(t, p.Source, "410")
	assert.NotContains(t, p.Source, "out vec4 fragColor")
}

func TestPatchFragmentVersionWithoutNewline(t *testing.T) {
	p := PatchFragment("#version 330")
	assert.True(t, strings.HasPrefix(p.Source, "#version 330\n"))
	assert.Equal(t, 1, countDecl(p.Source, "iTime"))
}

func TestPatchFragmentLegacyOutput(t *testing.T) {
	var buf bytes.Buffer
	orig := shadercanvas.Logger()
	shadercanvas.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { shadercanvas.SetLogger(orig) })

	p := PatchFragment("void main() { gl_FragColor = vec4(1.0); }")
	assert.True(t, p.LegacyOutput)
	assert.NotContains(t, p.Source, "gl_FragColor")
	assert.Contains(t, p.Source, "out vec4 fragmentColor;\n")
	assert.Contains(t, p.Source, "fragmentColor = vec4(1.0);")
	assert.NotContains(t, p.Source, "out vec4 fragColor")
	assert.Contains(t, buf.String(), "gl_FragColor")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestPatchFragmentWrapsMainImage(t *testing.T) {
	src := "void mainImage(out vec4 c, in vec2 uv) { c = vec4(uv, 0.0, 0.5); }"
	p := PatchFragment(src)
	require.True(t, p.WrappedMainImage)
	assert.Contains(t, p.Source, "mainImage(fragColor, gl_FragCoord.xy);")
	assert.Contains(t, p.Source, "fragColor.a = 1.0;")
	assert.Equal(t, 1, strings.Count(p.Source, "out vec4 fragColor;"))
	assert.True(t, strings.HasSuffix(p.Source, "}\n"))
}

func TestPatchFragmentMainImageWithMain(t *testing.T) {
	src := "out vec4 o;\nvoid mainImage(out vec4 c, in vec2 uv) { c = vec4(1.0); }\nvoid main () { mainImage(o, gl_FragCoord.xy); }\n"
	p := PatchFragment(src)
	assert.False(t, p.WrappedMainImage)
	assert.NotContains(t, p.Source, "fragColor")
}

func TestPatchFragmentDeclaredUniformsNotDuplicated(t *testing.T) {
	src := `#version 330 core
uniform float iTime;
uniform vec3 iResolution;
uniform vec4 iMouse;
uniform int iFrame;
uniform float iTimeDelta;
uniform vec4 iDate;
uniform float iSampleRate;
uniform float iChannelTime[4];
uniform vec3 iChannelResolution[4];
uniform sampler2D iChannel0;
uniform sampler2D iChannel1;
uniform sampler2D iChannel2;
uniform sampler2D iChannel3;
out vec4 fragColor;
void main() { fragColor = vec4(iTime); }
`
	p := PatchFragment(src)
	assert.Empty(t, p.Declared)
	assert.Equal(t, src, p.Source)
	for _, name := range StandardUniformNames() {
		assert.Equal(t, 1, countDecl(p.Source, name), name)
	}
}

func TestPatchFragmentNameOnlyCheck(t *testing.T) {
	p := PatchFragment("uniform int iTime;\nvoid main() { fragColor = vec4(float(iTime)); }")
	assert.NotContains(t, p.Declared, "iTime")
	assert.Equal(t, 1, countDecl(p.Source, "iTime"))
	assert.Contains(t, p.Declared, "iResolution")
}

func TestPatchFragmentIdempotent(t *testing.T) {
	sources := []string{
		"void main() { fragColor = vec4(1.0); }",
		"void main() { gl_FragColor = vec4(iTime); }",
		"void mainImage(out vec4 c, in vec2 f) { c = texture(iChannel0, f / iResolution.xy); }",
		"#version 330 core\nuniform vec2 resolution;\nout vec4 fragColor;\nvoid main() { fragColor = vec4(0.0); }\n",
		Fallback(),
	}
	for _, src := range sources {
		once := PatchFragment(src)
		twice := PatchFragment(once.Source)
		assert.Equal(t, once.Source, twice.Source)
		assert.Empty(t, twice.Declared)
		assert.False(t, twice.WrappedMainImage)
		assert.False(t, twice.LegacyOutput)
	}
}

func TestPatchFragmentPrecision(t *testing.T) {
	p := PatchFragment("void mainImage(out vec4 c, in vec2 f) { c = vec4(0.0); }", WithVersion("300 es"), WithPrecision())
	lines := strings.Split(p.Source, "\n")
	assert.Equal(t, "#version 300 es", lines[0])
	assert.Equal(t, "precision highp float;", lines[1])
	assert.Equal(t, "precision highp int;", lines[2])
}

func TestPatchVertex(t *testing.T) {
	assert.Equal(t, "#version 330\nvoid main() {}", PatchVertex("void main() {}"))
	assert.Equal(t, Vertex(), PatchVertex(Vertex()))
}

func TestDeclaresUniform(t *testing.T) {
	assert.True(t, DeclaresUniform("uniform  vec3 iChannelResolution[4];", "iChannelResolution"))
	assert.True(t, DeclaresUniform("uniform float[4] iChannelTime;", "iChannelTime"))
	assert.False(t, DeclaresUniform("uniform float iTimeDelta;", "iTime"))
	assert.False(t, DeclaresUniform("float iTime = 0.0;", "iTime"))
	assert.True(t, DeclaresUniform("uniform float speed;", "speed"))
}
