package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrclmr/exhalebatch/internal/audio"
	"github.com/mrclmr/exhalebatch/internal/config"
	"github.com/mrclmr/exhalebatch/internal/log"
)

type options struct {
	configPath string
	logLevel   string

	encoder          string
	transcoder       string
	preset           audio.Preset
	parallel         int
	preserveMetadata bool
	deleteSource     bool
	detailedProgress bool
	tempDir          string
	playlist         string
}

// loadSettings reads the settings file and applies the flags the user set.
// It also configures logging.
func loadSettings(cmd *cobra.Command, opts *options) (*config.Settings, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	s := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		s = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		err := s.LogLevel.UnmarshalText([]byte(opts.logLevel))
		if err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	if flags.Changed("encoder") {
		s.EncoderPath = opts.encoder
	}
	if flags.Changed("transcoder") {
		s.TranscoderPath = opts.transcoder
	}
	if flags.Changed("preset") {
		s.Preset = opts.preset
	}
	if flags.Changed("parallel") {
		s.Parallel = opts.parallel
	}
	if flags.Changed("preserve-metadata") {
		s.PreserveMetadata = opts.preserveMetadata
	}
	if flags.Changed("delete-source") {
		s.DeleteSource = opts.deleteSource
	}
	if flags.Changed("detailed-progress") {
		s.DetailedProgress = opts.detailedProgress
	}
	if flags.Changed("temp-dir") {
		s.TempDir = opts.tempDir
	}

	setupLogging(s.LogLevel)
	if path != "" {
		slog.Debug("settings", "path", path)
	}
	return s, nil
}

func setupLogging(level slog.Level) {
	switch level {
	case slog.LevelInfo:
		slog.SetDefault(slog.New(log.NewMsgHandler(os.Stderr, level)))
	default:
		slog.SetLogLoggerLevel(level)
	}
}
