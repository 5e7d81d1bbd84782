package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentic-research/usemodel/internal/batch"
)

var (
	writeFiles    bool
	showDiff      bool
	listFiles     bool
	jsonReport    bool
	stdinFilename string
)

func init() {
	f := rewriteCmd.Flags()
	f.BoolVarP(&writeFiles, "write", "w", false, "Write results back to the source files")
	f.BoolVarP(&showDiff, "diff", "d", false, "Print unified diffs instead of rewritten sources")
	f.BoolVarP(&listFiles, "list", "l", false, "List files whose contents change")
	f.BoolVar(&jsonReport, "json", false, "Print a JSON report")
	f.StringVar(&stdinFilename, "stdin-filename", "stdin.js", "File name used for input read from stdin")
	rewriteCmd.MarkFlagsMutuallyExclusive("diff", "list", "json")

	rootCmd.AddCommand(rewriteCmd)
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [paths...]",
	Short: "Rewrite files, or stdin when no path or - is given",
	Long: `Rewrite replaces every destructured useModel / useModelState call with a
selector read on the store.

Without paths the source is read from stdin and the result is always written
to stdout: files that cannot be rewritten are printed unchanged and the reason
is logged to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
			if writeFiles || showDiff || listFiles || jsonReport {
				return fmt.Errorf("--write, --diff, --list and --json need file paths")
			}
			return rewriteStdin(cmd)
		}

		runner := &batch.Runner{
			FS:       hostFS,
			Rewriter: newRewriter(),
			Config:   cfg,
			Write:    writeFiles,
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
		return printReport(cmd.OutOrStdout(), report)
	},
}

func rewriteStdin(cmd *cobra.Command) error {
	src, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	res := newRewriter().Rewrite(src, stdinFilename)
	_, err = cmd.OutOrStdout().Write(res.Output)
	return err
}

func printReport(w io.Writer, report *batch.Report) error {
	switch {
	case jsonReport:
		_, err := fmt.Fprintln(w, report.JSON())
		return err
	case listFiles:
		for _, f := range report.Changed() {
			if _, err := fmt.Fprintln(w, f.Path); err != nil {
				return err
			}
		}
	case showDiff:
		for _, f := range report.Changed() {
			diff, err := f.Diff()
			if err != nil {
				return fmt.Errorf("diff %s: %w", f.Path, err)
			}
			if _, err := io.WriteString(w, diff); err != nil {
				return err
			}
		}
	case !writeFiles:
		for _, f := range report.Files {
			if _, err := w.Write(f.Output); err != nil {
				return err
			}
		}
	}
	return nil
}
