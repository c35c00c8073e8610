package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRenderer            = RendererTcell
	DefaultTheme               = "legacy"
	DefaultFrameInterval       = 80 * time.Millisecond
	DefaultMutationProbability = 0.05
	DefaultPalette             = "@%#*+=-:. "
	DefaultStatusLabel         = "TRON LEGACY TERMINAL"
	DefaultBootHold            = 400 * time.Millisecond
	DefaultBootPoll            = 100 * time.Millisecond
)

const (
	RendererTcell     = "tcell"
	RendererBubbletea = "bubbletea"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Renderer  string          `yaml:"renderer"`
	Theme     string          `yaml:"theme"`
	Seed      int64           `yaml:"seed"`
	LogFile   string          `yaml:"log_file"`
	Animation AnimationConfig `yaml:"animation"`
	Boot      BootConfig      `yaml:"boot"`
}

type AnimationConfig struct {
	FrameInterval       time.Duration `yaml:"frame_interval"`
	MutationProbability float64       `yaml:"mutation_probability"`
	Palette             string        `yaml:"palette"`
	StatusLabel         string        `yaml:"status_label"`
}

type BootConfig struct {
	Skip bool          `yaml:"skip"`
	Hold time.Duration `yaml:"hold"`
	Poll time.Duration `yaml:"poll"`
}

func DefaultConfig() *Config {
	return &Config{
		Renderer:  DefaultRenderer,
		Theme:     DefaultTheme,
		Animation: DefaultAnimation(),
		Boot:      DefaultBoot(),
	}
}

func DefaultAnimation() AnimationConfig {
	return AnimationConfig{
		FrameInterval:       DefaultFrameInterval,
		MutationProbability: DefaultMutationProbability,
		Palette:             DefaultPalette,
		StatusLabel:         DefaultStatusLabel,
	}
}

func DefaultBoot() BootConfig {
	return BootConfig{
		Hold: DefaultBootHold,
		Poll: DefaultBootPoll,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first invalid field. Theme names are checked by the
// caller against the theme table, since this package does not know it.
func (c *Config) Validate() error {
	switch c.Renderer {
	case RendererTcell, RendererBubbletea:
	default:
		return fmt.Errorf("%w: unknown renderer %q", ErrInvalidConfig, c.Renderer)
	}
	if err := c.Animation.Validate(); err != nil {
		return err
	}
	return c.Boot.Validate()
}

func (a AnimationConfig) Validate() error {
	if a.FrameInterval <= 0 {
		return fmt.Errorf("%w: frame_interval must be positive", ErrInvalidConfig)
	}
	if a.MutationProbability < 0 || a.MutationProbability > 1 {
		return fmt.Errorf("%w: mutation_probability %v outside [0,1]", ErrInvalidConfig, a.MutationProbability)
	}
	if a.Palette == "" {
		return fmt.Errorf("%w: palette is empty", ErrInvalidConfig)
	}
	for _, r := range a.Palette {
		if r < 0x20 || r > 0x7e {
			return fmt.Errorf("%w: palette glyph %q is not printable ASCII", ErrInvalidConfig, r)
		}
	}
	for _, r := range a.StatusLabel {
		if r < 0x20 || r > 0x7e {
			return fmt.Errorf("%w: status_label must be printable ASCII", ErrInvalidConfig)
		}
	}
	return nil
}

func (b BootConfig) Validate() error {
	if b.Hold <= 0 {
		return fmt.Errorf("%w: boot hold must be positive", ErrInvalidConfig)
	}
	if b.Poll <= 0 {
		return fmt.Errorf("%w: boot poll must be positive", ErrInvalidConfig)
	}
	return nil
}

// PaletteRunes returns the palette as a rune slice for random indexing.
func (a AnimationConfig) PaletteRunes() []rune {
	return []rune(a.Palette)
}
