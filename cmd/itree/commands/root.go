package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-logr/logr"
	"github.com/henderiw/intervaltree/pkg/config"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

type rootOptions struct {
	configPath string
	output     string
	verbose    bool
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "itree",
		Short: "Query a set of intervals for overlaps",
		Long: `itree loads labelled intervals and IPv4 ranges from a YAML file and
reports which of them overlap the given queries.

Commands:
  query   intervals overlapping an interval
  stab    intervals containing a point
  ip      ip ranges overlapping a range, prefix or address
  nodes   dump the tree structure`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "interval set file (default ./intervals.yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "output format: table, yaml or json")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newQueryCommand(opts))
	rootCmd.AddCommand(newStabCommand(opts))
	rootCmd.AddCommand(newIPCommand(opts))
	rootCmd.AddCommand(newNodesCommand(opts))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "itree %s\n", Version)
		},
	}
}

// load reads the config and applies the command line overrides.
func (r *rootOptions) load() (*config.Config, error) {
	c, err := config.Load(r.configPath)
	if err != nil {
		return nil, err
	}
	if r.output != "" {
		c.Output.Format = r.output
	}
	if r.verbose {
		c.Logging.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// newLogger bridges a slog handler into the logr.Logger the libraries take.
// Debug maps to logr verbosity 1.
func newLogger(c config.LoggingConfig, w io.Writer) logr.Logger {
	handlerOpts := &slog.HandlerOptions{Level: slogLevel(c.Level)}
	var handler slog.Handler
	if c.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return logr.FromSlogHandler(handler)
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
