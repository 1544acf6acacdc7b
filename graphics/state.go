package graphics

// ChannelUnits is the number of texture units the renderer binds channels
// to, starting at Texture0.
const ChannelUnits = 4

// State is a snapshot of the host pipeline state that the renderer
// touches. Restoring a State leaves the host exactly as it was captured.
type State struct {
	Enabled       map[Capability]bool
	DepthMask     bool
	ColorMask     [4]bool
	BlendFunc     BlendFunc
	BlendEqRGB    BlendEquation
	BlendEqAlpha  BlendEquation
	Viewport      Rect
	Scissor       Rect
	ActiveTexture TextureUnit
	Texture       uint32
	Units         [ChannelUnits]uint32
	Program       uint32
	VertexArray   uint32
	ArrayBuffer   uint32
	Framebuffer   uint32
}

// Capture reads the current state from dev. The active texture unit is
// switched while reading the channel units and selected again afterwards.
func Capture(dev Device) State {
	s := State{Enabled: make(map[Capability]bool, len(Capabilities))}
	for _, c := range Capabilities {
		s.Enabled[c] = dev.IsEnabled(c)
	}
	s.DepthMask = dev.GetDepthMask()
	s.ColorMask = dev.GetColorMask()
	s.BlendFunc = dev.GetBlendFunc()
	s.BlendEqRGB, s.BlendEqAlpha = dev.GetBlendEquation()
	s.Viewport = dev.GetViewport()
	s.Scissor = dev.GetScissorBox()
	s.ActiveTexture = dev.GetActiveTexture()
	s.Texture = dev.GetTextureBinding()
	for i := range s.Units {
		dev.ActiveTexture(Texture0 + TextureUnit(i))
		s.Units[i] = dev.GetTextureBinding()
	}
	dev.ActiveTexture(s.ActiveTexture)
	s.Program = dev.GetCurrentProgram()
	s.VertexArray = dev.GetVertexArrayBinding()
	s.ArrayBuffer = dev.GetArrayBufferBinding()
	s.Framebuffer = dev.GetFramebufferBinding()
	return s
}

// Restore writes s back to dev. Channel units are rebound first, then the
// captured active unit is selected and its texture rebound.
func (s State) Restore(dev Device) {
	for _, c := range Capabilities {
		setCapability(dev, c, s.Enabled[c])
	}
	dev.DepthMask(s.DepthMask)
	dev.ColorMask(s.ColorMask[0], s.ColorMask[1], s.ColorMask[2], s.ColorMask[3])
	dev.BlendFuncSeparate(s.BlendFunc.SrcRGB, s.BlendFunc.DstRGB, s.BlendFunc.SrcAlpha, s.BlendFunc.DstAlpha)
	dev.BlendEquationSeparate(s.BlendEqRGB, s.BlendEqAlpha)
	dev.Viewport(s.Viewport)
	dev.Scissor(s.Scissor)
	for i, tex := range s.Units {
		dev.ActiveTexture(Texture0 + TextureUnit(i))
		dev.BindTexture(tex)
	}
	dev.ActiveTexture(s.ActiveTexture)
	dev.BindTexture(s.Texture)
	dev.UseProgram(s.Program)
	dev.BindVertexArray(s.VertexArray)
	dev.BindArrayBuffer(s.ArrayBuffer)
	dev.BindFramebuffer(s.Framebuffer)
}

// Equal reports whether two snapshots describe the same pipeline state.
func (s State) Equal(o State) bool {
	for _, c := range Capabilities {
		if s.Enabled[c] != o.Enabled[c] {
			return false
		}
	}
	return s.DepthMask == o.DepthMask &&
		s.ColorMask == o.ColorMask &&
		s.BlendFunc == o.BlendFunc &&
		s.BlendEqRGB == o.BlendEqRGB &&
		s.BlendEqAlpha == o.BlendEqAlpha &&
		s.Viewport == o.Viewport &&
		s.Scissor == o.Scissor &&
		s.ActiveTexture == o.ActiveTexture &&
		s.Texture == o.Texture &&
		s.Units == o.Units &&
		s.Program == o.Program &&
		s.VertexArray == o.VertexArray &&
		s.ArrayBuffer == o.ArrayBuffer &&
		s.Framebuffer == o.Framebuffer
}

func setCapability(dev StateDevice, c Capability, on bool) {
	if on {
		dev.Enable(c)
	} else {
		dev.Disable(c)
	}
}
