package options

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

const (
	MinQuality        = 0.05
	MinFramerateLimit = 30
	MaxFramerateLimit = 260
)

// Settings configures the background shader.
type Settings struct {
	AutoCompile       bool            `yaml:"auto_compile"`
	DiagnosticLogging bool            `yaml:"diagnostic_logging"`
	Quality           float64         `yaml:"quality"`
	Speed             float64         `yaml:"speed"`
	FramerateOverride bool            `yaml:"framerate_override"`
	FramerateLimit    int             `yaml:"framerate_limit"`
	DisableVsync      bool            `yaml:"disable_vsync"`
	FadeInSeconds     float64         `yaml:"fade_in_seconds"`
	Translate         bool            `yaml:"translate"`
	GLSLVersion       string          `yaml:"glsl_version"`
	Channels          []ChannelConfig `yaml:"channels"`
}

// ChannelConfig binds media to one iChannel slot.
type ChannelConfig struct {
	Index  int    `yaml:"index"`
	Kind   string `yaml:"kind"` // image, video, mic, audio
	Path   string `yaml:"path"`
	Frame  int    `yaml:"frame"`
	Filter string `yaml:"filter"`
	Wrap   string `yaml:"wrap"`
	VFlip  bool   `yaml:"vflip"`
}

// Defaults returns the embedded default settings.
func Defaults() *Settings {
	s, err := Parse(nil)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse overlays data on the embedded defaults and validates the result.
func Parse(data []byte) (*Settings, error) {
	s := &Settings{}
	if err := yaml.Unmarshal(defaultsYAML, s); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parsing settings: %w", err)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads settings from path. An empty path yields the defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}
	return Parse(data)
}

// Validate clamps numeric settings into range and rejects bad channel
// bindings.
func (s *Settings) Validate() error {
	if s.Quality < MinQuality {
		s.Quality = MinQuality
	}
	if s.Speed < 0 {
		s.Speed = 0
	}
	s.FramerateLimit = ClampFramerate(s.FramerateLimit)
	if s.FadeInSeconds < 0 {
		s.FadeInSeconds = 0
	}
	if s.GLSLVersion == "" {
		s.GLSLVersion = "330"
	}
	for _, c := range s.Channels {
		if c.Index < 0 || c.Index > 3 {
			return fmt.Errorf("channel index %d out of range", c.Index)
		}
		switch c.Kind {
		case "image", "video", "audio":
			if c.Path == "" {
				return fmt.Errorf("channel %d: %s requires a path", c.Index, c.Kind)
			}
		case "mic":
		default:
			return fmt.Errorf("channel %d: unknown kind %q", c.Index, c.Kind)
		}
	}
	return nil
}

// ClampFramerate limits fps to the supported override range.
func ClampFramerate(fps int) int {
	return min(max(fps, MinFramerateLimit), MaxFramerateLimit)
}

// WriteYAML writes the settings to path.
func (s *Settings) WriteYAML(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
