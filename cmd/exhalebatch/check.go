package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrclmr/exhalebatch/internal/audio"
)

const checkTimeout = 10 * time.Second

type binary struct {
	name string
	path string
	// args print a version or banner.
	args []string
}

type checkResult struct {
	name     string
	resolved string
	ok       bool
	detail   string
}

func newCheckCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "check",
		Short:             "Check that exhale and ffmpeg can be run",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			runner := audio.NewRunner(exec.CommandContext)
			results := checkBinaries(cmd.Context(), runner, []binary{
				{name: "exhale", path: s.EncoderPath},
				{name: "ffmpeg", path: s.TranscoderPath, args: []string{"-version"}},
			})
			_, err = fmt.Fprintln(cmd.OutOrStdout(), checkTable(results))
			if err != nil {
				return err
			}
			for _, r := range results {
				if !r.ok {
					return fmt.Errorf("%s is not available", r.name)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.encoder, "encoder", "", "path to the exhale executable")
	cmd.Flags().StringVar(&opts.transcoder, "transcoder", "", "path to the ffmpeg executable")
	return cmd
}

// checkBinaries resolves and runs each binary. exhale exits non-zero when
// run without arguments, so only launching counts.
func checkBinaries(ctx context.Context, runner *audio.Runner, binaries []binary) []checkResult {
	results := make([]checkResult, 0, len(binaries))
	for _, b := range binaries {
		r := checkResult{name: b.name}
		if b.path == "" {
			r.detail = "path not set"
			results = append(results, r)
			continue
		}
		resolved, err := runner.LookPath(b.path)
		if err != nil {
			r.detail = err.Error()
			results = append(results, r)
			continue
		}
		r.resolved = resolved

		runCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		res, err := runner.Run(runCtx, resolved, b.args...)
		cancel()
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			r.detail = "no response within " + checkTimeout.String()
		case err != nil:
			r.detail = err.Error()
		default:
			r.ok = true
			r.detail = firstLine(res.Stdout + "\n" + res.Stderr)
		}
		results = append(results, r)
	}
	return results
}

func checkTable(results []checkResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "missing"
		if r.ok {
			status = "ok"
		}
		rows = append(rows, []string{r.name, status, r.resolved, r.detail})
	}
	return renderTable([]column{
		col("Tool"),
		col("Status"),
		col("Path").wrap(pathWidth),
		col("Detail").wrap(messageWidth),
	}, rows)
}

func firstLine(s string) string {
	for line := range strings.Lines(s) {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
