package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/richinsley/shadercanvas/graphics"
	"github.com/richinsley/shadercanvas/shader"
)

// ErrMissingProgram is returned by Render when no shader has compiled yet.
var ErrMissingProgram = errors.New("renderer: no compiled shader program")

// StageCompileError reports a vertex or fragment stage that failed to
// compile, with the driver's diagnostic.
type StageCompileError struct {
	Stage graphics.ShaderStage
	Log   string
}

func (e *StageCompileError) Error() string {
	return fmt.Sprintf("%s shader compilation failed: %s", e.Stage, strings.TrimSpace(e.Log))
}

// LinkError reports stages that compiled but did not link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return "shader program link failed: " + strings.TrimSpace(e.Log)
}

// Uniforms holds the locations resolved at link time. A location of -1
// means the shader does not use that input.
type Uniforms struct {
	// Legacy names used by shaders written against plain GLSL.
	Time            int32
	Resolution      int32
	Mouse           int32
	Frame           int32
	PersistentFrame int32
	Speed           int32

	ITime       int32
	IResolution int32
	IMouse      int32
	IFrame      int32
	ITimeDelta  int32
	IDate       int32
	ISampleRate int32

	IChannel           [4]int32
	IChannelResolution [4]int32
	IChannelTime       [4]int32
}

// Program is a linked shader program with its uniform table.
type Program struct {
	ID       uint32
	Uniforms Uniforms
}

// Delete releases the GPU program.
func (p *Program) Delete(dev graphics.ShaderDevice) {
	if p != nil && p.ID != 0 {
		dev.DeleteProgram(p.ID)
		p.ID = 0
	}
}

// NameMap translates a source-level uniform name to the name the linked
// program uses. A nil map is the identity.
type NameMap map[string]string

func (m NameMap) lookup(name string) string {
	if mapped, ok := m[name]; ok && mapped != "" {
		return mapped
	}
	return name
}

func resolveUniforms(dev graphics.ShaderDevice, program uint32, names NameMap) Uniforms {
	loc := func(name string) int32 {
		return dev.UniformLocation(program, names.lookup(name))
	}
	u := Uniforms{
		Time:            loc("time"),
		Resolution:      loc("resolution"),
		Mouse:           loc("mouse"),
		Frame:           loc("frame"),
		PersistentFrame: loc("persistent_frame"),
		Speed:           loc("speed"),
		ITime:           loc("iTime"),
		IResolution:     loc("iResolution"),
		IMouse:          loc("iMouse"),
		IFrame:          loc("iFrame"),
		ITimeDelta:      loc("iTimeDelta"),
		IDate:           loc("iDate"),
		ISampleRate:     loc("iSampleRate"),
	}
	resolution := names.lookup("iChannelResolution")
	channelTime := names.lookup("iChannelTime")
	for i := 0; i < 4; i++ {
		u.IChannel[i] = loc(fmt.Sprintf("iChannel%d", i))
		u.IChannelResolution[i] = dev.UniformLocation(program, fmt.Sprintf("%s[%d]", resolution, i))
		u.IChannelTime[i] = dev.UniformLocation(program, fmt.Sprintf("%s[%d]", channelTime, i))
	}
	return u
}

// Compiler turns vertex and fragment source into linked programs.
type Compiler struct {
	dev graphics.ShaderDevice
}

func NewCompiler(dev graphics.ShaderDevice) *Compiler {
	return &Compiler{dev: dev}
}

func (c *Compiler) compileStage(stage graphics.ShaderStage, source string) (uint32, error) {
	id := c.dev.CreateShader(stage)
	c.dev.ShaderSource(id, source)
	if ok, log := c.dev.CompileShader(id); !ok {
		c.dev.DeleteShader(id)
		return 0, &StageCompileError{Stage: stage, Log: log}
	}
	return id, nil
}

// Compile builds a program from vertex and fragment source. Stage objects
// are released on every path. names maps uniform names when the fragment
// source was produced by a translator.
func (c *Compiler) Compile(vertex, fragment string, names NameMap) (*Program, error) {
	vs, err := c.compileStage(graphics.VertexShader, vertex)
	if err != nil {
		return nil, err
	}
	fs, err := c.compileStage(graphics.FragmentShader, fragment)
	if err != nil {
		c.dev.DeleteShader(vs)
		return nil, err
	}

	id := c.dev.CreateProgram()
	c.dev.AttachShader(id, vs)
	c.dev.AttachShader(id, fs)
	c.dev.BindAttribLocation(id, shader.PositionAttrib, "position")
	c.dev.BindAttribLocation(id, shader.UVAttrib, "uv")
	ok, log := c.dev.LinkProgram(id)

	c.dev.DetachShader(id, vs)
	c.dev.DetachShader(id, fs)
	c.dev.DeleteShader(vs)
	c.dev.DeleteShader(fs)

	if !ok {
		c.dev.DeleteProgram(id)
		return nil, &LinkError{Log: log}
	}
	return &Program{ID: id, Uniforms: resolveUniforms(c.dev, id, names)}, nil
}
