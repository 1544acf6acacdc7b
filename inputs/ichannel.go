package inputs

// Uniforms holds the per-frame values that dynamic channels might need.
type Uniforms struct {
	Time      float32
	TimeDelta float32
	Mouse     [4]float32
	Frame     int32
}

// Channel is a texture bound to one of iChannel0-3.
type Channel interface {
	// GetCType returns the kind of input, e.g. "texture" or "mic".
	GetCType() string

	// Update is called once per frame on the render goroutine, before the
	// texture is bound.
	Update(uniforms *Uniforms)

	// GetTextureID returns the texture that should be bound.
	GetTextureID() uint32

	// ChannelRes returns the resolution of the input channel as a vec3.
	ChannelRes() [3]float32

	// Destroy releases any resources held by the channel.
	Destroy()
}

// SampleRater is implemented by audio channels. The renderer reports the
// first one it finds through iSampleRate.
type SampleRater interface {
	SampleRate() int
}
