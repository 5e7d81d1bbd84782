package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/usemodel/api"
	"github.com/agentic-research/usemodel/internal/config"
	"github.com/agentic-research/usemodel/internal/rewrite"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

var (
	configPath string
	storeName  string
	workers    int
	verbose    bool

	cfg    api.Config
	logger *slog.Logger
)

// errSilent makes the process exit 1 without printing anything more.
var errSilent = errors.New("silent failure")

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to config file (default "+config.DefaultFile+" if present)")
	pf.StringVar(&storeName, "store-name", "", "Local name for the injected store import")
	pf.IntVarP(&workers, "workers", "j", 0, "Number of files rewritten in parallel")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

var rootCmd = &cobra.Command{
	Use:           "usemodel",
	Short:         "Rewrite destructured useModel and useModelState calls into store selectors",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					return slog.Attr{}
				}
				return a
			},
		}))

		path, required := configPath, cmd.Flags().Changed("config")
		if path == "" {
			path = config.DefaultFile
		}
		c, err := config.Load(path, required)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("store-name") {
			c.StoreName = storeName
		}
		if cmd.Flags().Changed("workers") {
			c.Workers = workers
		}
		if err := config.Validate(c); err != nil {
			return err
		}
		cfg = c
		logger.Debug("configuration loaded", "store_name", cfg.StoreName, "workers", cfg.Workers)
		return nil
	},
}

func newRewriter() *rewrite.Rewriter {
	return rewrite.New(rewrite.Options{StoreName: cfg.StoreName, Logger: logger})
}

// Main runs the command line and returns the process exit status.
func Main() int {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, "usemodel:", err)
		}
		return 1
	}
	return 0
}

// Execute runs the root command and exits.
func Execute() {
	os.Exit(Main())
}
