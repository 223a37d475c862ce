package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrclmr/exhalebatch/internal/audio"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "presets",
		Short:             "List quality presets",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), presetsTable())
			return err
		},
	}
}

func presetsTable() string {
	presets := audio.Presets()
	rows := make([][]string, 0, len(presets))
	for _, p := range presets {
		rows = append(rows, []string{p.Preset.String(), p.Bitrate, p.Description})
	}
	return renderTable([]column{col("Preset"), col("Bitrate").right(), col("Note")}, rows)
}
