package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/mrclmr/exhalebatch/internal/audio"
	"github.com/mrclmr/exhalebatch/internal/convert"
)

const appName = "exhalebatch"

// Settings is the settings file.
type Settings struct {
	LogLevel         slog.Level   `yaml:"log_level" toml:"log_level"`
	EncoderPath      string       `yaml:"encoder_path" toml:"encoder_path"`
	TranscoderPath   string       `yaml:"transcoder_path" toml:"transcoder_path"`
	Preset           audio.Preset `yaml:"preset" toml:"preset"`
	Parallel         int          `yaml:"parallel" toml:"parallel"`
	PreserveMetadata bool         `yaml:"preserve_metadata" toml:"preserve_metadata"`
	DeleteSource     bool         `yaml:"delete_source" toml:"delete_source"`
	DetailedProgress bool         `yaml:"detailed_progress" toml:"detailed_progress"`
	TempDir          string       `yaml:"temp_dir" toml:"temp_dir"`
	// HistoryPath is the SQLite database of finished jobs. Empty disables the history.
	HistoryPath string   `yaml:"history_path" toml:"history_path"`
	Progress    Progress `yaml:"progress" toml:"progress"`
}

// Progress tunes the simulated encoder progress.
type Progress struct {
	Interval Duration `yaml:"interval" toml:"interval"`
	Step     float64  `yaml:"step" toml:"step"`
	Cap      float64  `yaml:"cap" toml:"cap"`
}

// Default returns the settings used for keys missing in the file.
func Default() *Settings {
	return &Settings{
		LogLevel:         slog.LevelInfo,
		TranscoderPath:   convert.DefaultTranscoder,
		Preset:           audio.DefaultPreset,
		Parallel:         convert.DefaultParallel,
		PreserveMetadata: true,
		DetailedProgress: true,
		HistoryPath:      defaultHistoryPath(),
		Progress: Progress{
			Interval: Duration(convert.DefaultProgress.Interval),
			Step:     convert.DefaultProgress.Step,
			Cap:      convert.DefaultProgress.Cap,
		},
	}
}

func defaultHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "history.db")
}

type settings Settings

func (s *Settings) UnmarshalYAML(node *yaml.Node) error {
	y := settings(*s)
	err := node.Decode(&y)
	if err != nil {
		return err
	}
	candidate := Settings(y)
	err = candidate.validate()
	if err != nil {
		return err
	}
	*s = candidate
	return nil
}

func (s *Settings) validate() error {
	if s.Preset == "" {
		return keyEmptyError("preset")
	}
	if s.TranscoderPath == "" {
		return keyEmptyError("transcoder_path")
	}
	if s.Parallel < 0 || s.Parallel > convert.MaxParallel {
		return fmt.Errorf("parallel must be between 0 and %d, got %d", convert.MaxParallel, s.Parallel)
	}
	if s.Progress.Interval < 0 {
		return fmt.Errorf("progress.interval must not be negative, got %s", s.Progress.Interval)
	}
	if s.Progress.Step <= 0 || s.Progress.Step > 1 {
		return fmt.Errorf("progress.step must be in (0, 1], got %g", s.Progress.Step)
	}
	if s.Progress.Cap <= 0 || s.Progress.Cap >= 1 {
		return fmt.Errorf("progress.cap must be in (0, 1), got %g", s.Progress.Cap)
	}
	return nil
}

// Config returns the batch configuration. Zero values are replaced by the
// converter's defaults.
func (s *Settings) Config() convert.Config {
	return convert.Config{
		EncoderPath:      s.EncoderPath,
		TranscoderPath:   s.TranscoderPath,
		Preset:           s.Preset,
		Parallel:         s.Parallel,
		PreserveMetadata: s.PreserveMetadata,
		DeleteSource:     s.DeleteSource,
		DetailedProgress: s.DetailedProgress,
		TempDir:          s.TempDir,
		Progress: convert.ProgressPolicy{
			Interval: time.Duration(s.Progress.Interval),
			Step:     s.Progress.Step,
			Cap:      s.Progress.Cap,
		},
	}
}
