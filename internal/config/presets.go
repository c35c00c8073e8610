package config

import (
	"sort"
	"time"
)

var Presets = map[string]*Config{
	"legacy": DefaultConfig(),
	"calm": {
		Renderer: DefaultRenderer, Theme: "grid",
		Animation: AnimationConfig{
			FrameInterval: 120 * time.Millisecond, MutationProbability: 0.01,
			Palette: ".:-=+", StatusLabel: DefaultStatusLabel,
		},
		Boot: DefaultBoot(),
	},
	"storm": {
		Renderer: DefaultRenderer, Theme: "sark",
		Animation: AnimationConfig{
			FrameInterval: 40 * time.Millisecond, MutationProbability: 0.2,
			Palette: DefaultPalette, StatusLabel: DefaultStatusLabel,
		},
		Boot: BootConfig{Hold: 200 * time.Millisecond, Poll: DefaultBootPoll},
	},
}

// GetPreset returns a copy of the named preset, or nil if there is none.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
