package convert

import (
	"time"

	"github.com/mrclmr/exhalebatch/internal/audio"
)

const (
	DefaultParallel = 2
	MaxParallel     = 8

	DefaultTranscoder = "ffmpeg"
)

// ProgressPolicy drives the simulated encode progress. exhale reports no
// progress, so every Interval the progress grows by Step up to Cap.
type ProgressPolicy struct {
	Interval time.Duration
	Step     float64
	Cap      float64
}

// DefaultProgress ticks twice a second and stays below 90% until exhale exits.
var DefaultProgress = ProgressPolicy{
	Interval: 500 * time.Millisecond,
	Step:     0.1,
	Cap:      0.9,
}

// Config is the immutable input of one batch.
type Config struct {
	EncoderPath      string
	TranscoderPath   string
	Preset           audio.Preset
	Parallel         int
	PreserveMetadata bool
	DeleteSource     bool
	// DetailedProgress is only read by user interfaces.
	DetailedProgress bool
	// TempDir holds intermediate WAV files. Empty means next to the source.
	TempDir  string
	Progress ProgressPolicy
}

// Normalized replaces unset or invalid values by their defaults.
func (c Config) Normalized() Config {
	switch {
	case c.Parallel <= 0:
		c.Parallel = DefaultParallel
	case c.Parallel > MaxParallel:
		c.Parallel = MaxParallel
	}
	if c.Preset == "" {
		c.Preset = audio.DefaultPreset
	}
	if c.TranscoderPath == "" {
		c.TranscoderPath = DefaultTranscoder
	}
	if c.Progress.Interval <= 0 {
		c.Progress.Interval = DefaultProgress.Interval
	}
	if c.Progress.Step <= 0 || c.Progress.Step > 1 {
		c.Progress.Step = DefaultProgress.Step
	}
	if c.Progress.Cap <= 0 || c.Progress.Cap >= 1 {
		c.Progress.Cap = DefaultProgress.Cap
	}
	return c
}
