package audio

import (
	"fmt"
	"slices"

	"go.yaml.in/yaml/v3"
)

// Preset is the opaque quality token passed as first argument to exhale.
type Preset string

const DefaultPreset Preset = "5"

// PresetInfo describes a preset for listings.
type PresetInfo struct {
	Preset      Preset
	Bitrate     string
	Description string
}

var presets = []PresetInfo{
	{"0", "~48 kbps", "lowest, input sample rate must be <= 32 kHz"},
	{"1", "~64 kbps", ""},
	{"2", "~80 kbps", ""},
	{"3", "~96 kbps", ""},
	{"4", "~112 kbps", ""},
	{"5", "~128 kbps", "default"},
	{"6", "~144 kbps", ""},
	{"7", "~160 kbps", ""},
	{"8", "~176 kbps", ""},
	{"9", "~192 kbps", "highest quality"},
	{"a", "~36 kbps", "eSBR, very low bitrate"},
	{"b", "~48 kbps", "eSBR"},
	{"c", "~60 kbps", "eSBR"},
	{"d", "~72 kbps", "eSBR"},
	{"e", "~84 kbps", "eSBR"},
	{"f", "~96 kbps", "eSBR"},
	{"g", "~108 kbps", "eSBR"},
}

// Presets lists all known presets in order.
func Presets() []PresetInfo {
	return slices.Clone(presets)
}

func ParsePreset(s string) (Preset, error) {
	if !slices.ContainsFunc(presets, func(i PresetInfo) bool { return string(i.Preset) == s }) {
		return "", fmt.Errorf("unknown quality preset '%s', use 0-9 or a-g", s)
	}
	return Preset(s), nil
}

func (p Preset) String() string {
	return string(p)
}

func (p *Preset) UnmarshalText(text []byte) error {
	parsed, err := ParsePreset(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Preset) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

// UnmarshalYAML accepts unquoted digits like `preset: 5`.
func (p *Preset) UnmarshalYAML(node *yaml.Node) error {
	var y string
	err := node.Decode(&y)
	if err != nil {
		return err
	}
	return p.UnmarshalText([]byte(y))
}

// Set and Type implement pflag.Value.
func (p *Preset) Set(s string) error {
	return p.UnmarshalText([]byte(s))
}

func (p *Preset) Type() string {
	return "preset"
}
