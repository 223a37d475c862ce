package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrclmr/exhalebatch/internal/history"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:               "history",
		Short:             "List recent conversions",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			if s.HistoryPath == "" {
				return errors.New("history is disabled, set history_path in the settings")
			}
			store, err := history.Open(cmd.Context(), s.HistoryPath)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), historyTable(entries))
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}

func historyTable(entries []history.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := e.OutputPath
		if e.ErrorMessage != "" {
			detail = firstLine(e.ErrorMessage)
		}
		rows = append(rows, []string{
			e.FinishedAt.Local().Format("2006-01-02 15:04"),
			e.Status,
			e.Preset,
			filepath.Base(e.InputPath),
			detail,
		})
	}
	return renderTable([]column{
		col("Finished"),
		col("Status"),
		col("Preset").right(),
		col("File").wrap(pathWidth),
		col("Output / Error").wrap(messageWidth),
	}, rows)
}
