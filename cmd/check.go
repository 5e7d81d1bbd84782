package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/usemodel/internal/batch"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check paths...",
	Short: "Report files that would be rewritten; exit 1 if there are any",
	Long: `Check runs the rewrite without writing anything. It lists files that would
change or cannot be rewritten, and warns about hook calls the rewrite would
leave in place. Only the first two make check fail.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := &batch.Runner{
			FS:       hostFS,
			Rewriter: newRewriter(),
			Config:   cfg,
			Lint:     true,
			Logger:   logger,
		}
		paths, err := hostPaths(args)
		if err != nil {
			return err
		}
		report, err := runner.Run(cmd.Context(), paths)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range report.Files {
			switch {
			case f.Err != nil:
				fmt.Fprintf(out, "%s: cannot be rewritten\n", f.Path)
			case f.Changed:
				fmt.Fprintf(out, "%s: %d call site(s) to rewrite\n", f.Path, f.Sites)
			}
			for _, d := range f.Diagnostics {
				fmt.Fprintf(out, "  %s\n", d)
			}
			for _, d := range f.Leftovers {
				fmt.Fprintf(out, "  %s\n", d)
			}
		}

		changed, failed := len(report.Changed()), len(report.Failed())
		if changed == 0 && failed == 0 {
			return nil
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d files would change, %d cannot be rewritten\n",
			changed, len(report.Files), failed)
		return errSilent
	},
}
