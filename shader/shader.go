package shader

// DefaultVersion is the directive injected into sources that lack one.
const DefaultVersion = "330"

// Vertex attribute slots shared by the fullscreen quad, the frame pass and
// the blit pass.
const (
	PositionAttrib = 0
	UVAttrib       = 1
)

const vertexShaderSource = `#version 330 core
layout(location = 0) in vec3 position;
layout(location = 1) in vec2 uv;
out vec2 fragUV;
void main() {
    fragUV = uv;
    gl_Position = vec4(position, 1.0);
}
`

// The composite writes opaque alpha so the host never inherits the shader's
// transparency; uAlpha scales the colour instead.
const blitFragmentShaderSource = `#version 330 core
in vec2 fragUV;
out vec4 fragColor;
uniform sampler2D uTexture;
uniform float uAlpha;
void main() {
    vec4 tex = texture(uTexture, fragUV);
    fragColor = vec4(tex.rgb * uAlpha, 1.0);
}
`

// Vertex returns the fixed vertex stage used for every program.
func Vertex() string { return vertexShaderSource }

// BlitVertex returns the vertex stage of the composite pass.
func BlitVertex() string { return vertexShaderSource }

// BlitFragment returns the fragment stage of the composite pass. It samples
// uTexture and scales by uAlpha.
func BlitFragment() string { return blitFragmentShaderSource }
