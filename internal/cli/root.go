// Package cli implements the threadreport command line.
package cli

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
}

// flagKeys maps flags onto the config keys they override.
var flagKeys = map[string]string{
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"on-malformed": "ingest.on_malformed",
	"format":       "report.format",
	"stats-format": "report.stats_format",
}

// Execute runs the threadreport command with os.Args.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "threadreport <users.csv> <messages.jsonl> <report-out>",
		Short: "Rebuild message threads and write a per-message report",
		Long: `threadreport reads a JSON-lines message log and a CSV table of user
attributes, rebuilds every conversation thread, and writes one report row
per message with the thread owner's attributes appended. Usage statistics
are printed to stdout.`,
		Args:          exactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, args[0], args[1], args[2])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: threadreport.yaml in the config search path)")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	flags.String("on-malformed", "", "malformed message handling (skip, abort)")
	flags.String("format", "", "report format (csv, sqlite)")
	flags.String("stats-format", "", "stats output (csv, table)")

	return cmd
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &ExitError{Code: ExitUsage, Err: err}
		}
		return nil
	}
}
