package renderer

import (
	"github.com/richinsley/shadercanvas/graphics"
	"github.com/richinsley/shadercanvas/shader"
)

// Four xyz+uv vertices drawn as a triangle strip.
var quadVertices = []float32{
	-1, -1, 0, 0, 0,
	1, -1, 0, 1, 0,
	-1, 1, 0, 0, 1,
	1, 1, 0, 1, 1,
}

const quadStride = 5

// Quad is the fullscreen quad shared by the frame and blit passes.
type Quad struct {
	dev graphics.VertexDevice
	vao uint32
	vbo uint32
}

// NewQuad uploads the quad. It leaves its vertex array bound.
func NewQuad(dev graphics.VertexDevice) *Quad {
	q := &Quad{dev: dev}
	q.vao = dev.CreateVertexArray()
	dev.BindVertexArray(q.vao)
	q.vbo = dev.CreateBuffer()
	dev.BindArrayBuffer(q.vbo)
	dev.ArrayBufferData(quadVertices)
	dev.VertexAttrib(shader.PositionAttrib, 3, quadStride, 0)
	dev.VertexAttrib(shader.UVAttrib, 2, quadStride, 3)
	return q
}

// Draw binds the quad's vertex array and draws it.
func (q *Quad) Draw() {
	q.dev.BindVertexArray(q.vao)
	q.dev.DrawArrays(graphics.TriangleStrip, 0, int32(len(quadVertices)/quadStride))
}

func (q *Quad) Close() {
	if q.vao != 0 {
		q.dev.DeleteVertexArray(q.vao)
		q.vao = 0
	}
	if q.vbo != 0 {
		q.dev.DeleteBuffer(q.vbo)
		q.vbo = 0
	}
}
