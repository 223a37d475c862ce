package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrclmr/exhalebatch/internal/audio"
	"github.com/mrclmr/exhalebatch/internal/config"
)

func ExecuteContext(ctx context.Context, version string) error {
	return newRootCmd(version).ExecuteContext(ctx)
}

func newRootCmd(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Version:           version,
		Use:               "exhalebatch [flags] <file|dir>...",
		Short:             "Convert audio files to m4a with exhale",
		Long:              "Convert wav, mp3, flac, m4a, aac and mp4 files to xHE-AAC m4a files with the exhale encoder.\nNon-WAV input is converted to WAV with ffmpeg first.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: autocomplete,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), s, args, opts.playlist)
		},
	}

	addFlags(rootCmd, opts)

	exampleCmd := &cobra.Command{
		Use:               "example",
		Short:             "Print example settings file",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := config.YAML
			if toml, _ := cmd.Flags().GetBool("toml"); toml {
				format = config.TOML
			}
			example, err := config.Example(format)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), example)
			return err
		},
	}
	exampleCmd.Flags().Bool("toml", false, "print TOML instead of YAML")

	rootCmd.AddCommand(exampleCmd)
	rootCmd.AddCommand(newPresetsCmd())
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newManCmd(rootCmd))

	return rootCmd
}

func addFlags(cmd *cobra.Command, opts *options) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "settings file (default: exhalebatch/config.yaml in the user config directory)")
	pf.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	f := cmd.Flags()
	f.StringVar(&opts.encoder, "encoder", "", "path to the exhale executable")
	f.StringVar(&opts.transcoder, "transcoder", "", "path to the ffmpeg executable")
	f.VarP(&opts.preset, "preset", "p", "quality preset 0-9 or a-g")
	f.IntVarP(&opts.parallel, "parallel", "j", 0, "number of files converted at the same time, 1-8")
	f.BoolVar(&opts.preserveMetadata, "preserve-metadata", true, "copy tags of the source file")
	f.BoolVar(&opts.deleteSource, "delete-source", false, "delete source files after a successful conversion")
	f.BoolVar(&opts.detailedProgress, "detailed-progress", true, "show progress bars on a terminal")
	f.StringVar(&opts.tempDir, "temp-dir", "", "directory for intermediate WAV files")
	f.StringVar(&opts.playlist, "playlist", "", "write an m3u playlist of the converted files")
}

var subcommands = []string{"example", "presets", "check", "history"}

func autocomplete(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 && len(toComplete) > 0 {
		var matches []string
		for _, sub := range subcommands {
			if strings.HasPrefix(sub, toComplete) {
				matches = append(matches, sub)
			}
		}
		if len(matches) > 0 {
			return matches, cobra.ShellCompDirectiveNoFileComp
		}
	}
	return audio.Extensions(), cobra.ShellCompDirectiveFilterFileExt
}
