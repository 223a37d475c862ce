package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newManCmd(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:                   "man <dir>",
		Short:                 "Generate man pages",
		SilenceUsage:          true,
		Hidden:                true,
		DisableFlagsInUseLine: true,
		Example:               "exhalebatch man . && man ./exhalebatch.1",
		Args:                  cobra.ExactArgs(1),
		ValidArgsFunction:     cobra.NoFileCompletions,
		RunE: func(_ *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "EXHALEBATCH",
				Section: "1",
			}
			return doc.GenManTree(rootCmd, header, args[0])
		},
	}
}
