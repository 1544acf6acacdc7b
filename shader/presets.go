package shader

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed presets/*.glsl
var presetFS embed.FS

// FallbackPreset is the preset used when the editor buffer is blank.
const FallbackPreset = "aurora"

// Presets returns the names of the bundled shaders, sorted.
func Presets() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".glsl"))
	}
	sort.Strings(names)
	return names
}

// Preset returns the source of a bundled shader.
func Preset(name string) (string, error) {
	b, err := presetFS.ReadFile(path.Join("presets", name+".glsl"))
	if err != nil {
		return "", fmt.Errorf("unknown preset %q: %w", name, err)
	}
	return string(b), nil
}

// Fallback returns the bundled default shader. It always compiles.
func Fallback() string {
	src, err := Preset(FallbackPreset)
	if err != nil {
		panic(err)
	}
	return src
}

// IsBlank reports whether src has nothing to compile.
func IsBlank(src string) bool {
	return strings.TrimSpace(src) == ""
}
