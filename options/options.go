package options

import "flag"

// ShaderOptions holds command-line options for the demo host.
type ShaderOptions struct {
	APIKey       *string
	ShaderID     *string
	ShaderFile   *string
	SettingsFile *string
	Help         *bool
	Width        *int
	Height       *int
	Quality      *float64
	Alpha        *float64
	Channel0     *string // image, video or audio path, or "mic"
	Channel1     *string
	Channel2     *string
	Channel3     *string
	Verbose      *bool
}

// Register defines the demo host flags on fs.
func Register(fs *flag.FlagSet) *ShaderOptions {
	return &ShaderOptions{
		APIKey:       fs.String("apikey", "", "Shadertoy API key (from SHADERTOY_KEY env var if not set)"),
		ShaderID:     fs.String("shader", "", "Shadertoy shader ID used as initial source"),
		ShaderFile:   fs.String("file", "", "Fragment shader file to edit and watch"),
		SettingsFile: fs.String("settings", "", "YAML settings file"),
		Help:         fs.Bool("help", false, "Show help message"),
		Width:        fs.Int("width", 1280, "Width of the window"),
		Height:       fs.Int("height", 720, "Height of the window"),
		Quality:      fs.Float64("quality", 0, "Render scale override (0 keeps the settings value)"),
		Alpha:        fs.Float64("alpha", 1, "Background opacity"),
		Channel0:     fs.String("channel0", "", "Media for iChannel0"),
		Channel1:     fs.String("channel1", "", "Media for iChannel1"),
		Channel2:     fs.String("channel2", "", "Media for iChannel2"),
		Channel3:     fs.String("channel3", "", "Media for iChannel3"),
		Verbose:      fs.Bool("v", false, "Verbose logging"),
	}
}

// Channels returns the per-channel media flags in channel order.
func (o *ShaderOptions) Channels() [4]string {
	return [4]string{*o.Channel0, *o.Channel1, *o.Channel2, *o.Channel3}
}
