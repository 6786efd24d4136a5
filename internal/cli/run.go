package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tOgg1/threadreport/internal/config"
	"github.com/tOgg1/threadreport/internal/db"
	"github.com/tOgg1/threadreport/internal/logging"
	"github.com/tOgg1/threadreport/internal/report"
	"github.com/tOgg1/threadreport/internal/source"
	"github.com/tOgg1/threadreport/internal/threading"
)

// reportSink is a sink that can discard everything written to it.
type reportSink interface {
	report.Sink
	Abort() error
}

func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	loader := config.NewLoader()
	if opts.configFile != "" {
		loader.SetConfigFile(opts.configFile)
	}
	for flag, key := range flagKeys {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		value, err := cmd.Flags().GetString(flag)
		if err != nil {
			return nil, err
		}
		loader.Set(key, value)
	}
	return loader.Load()
}

func runReport(cmd *cobra.Command, opts *rootOptions, usersPath, messagesPath, outPath string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}
	logCfg := cfg.LogConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Init(logCfg)

	loc, err := cfg.Location()
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	attrs, err := source.LoadAttributes(usersPath)
	if err != nil {
		return err
	}
	store, loadStats, err := source.LoadMessages(messagesPath, cfg.Policy())
	if err != nil {
		return err
	}
	forest := threading.BuildForest(store)

	ctx := cmd.Context()
	var (
		sink  reportSink
		runID string
	)
	switch cfg.Report.Format {
	case config.FormatSQLite:
		dbSink, err := db.CreateReportSink(ctx, outPath, cfg.Database.BusyTimeoutMs, db.RunInfo{
			UsersPath:    usersPath,
			MessagesPath: messagesPath,
		})
		if err != nil {
			return err
		}
		sink, runID = dbSink, dbSink.RunID()
	default:
		csvSink, err := report.CreateCSVSink(outPath)
		if err != nil {
			return err
		}
		sink, runID = csvSink, uuid.New().String()
	}
	log := logging.WithRun(runID)
	log.Info().
		Int("users", attrs.Len()).
		Int("messages", loadStats.Loaded).
		Int("skipped", loadStats.Skipped).
		Str("input", humanize.Bytes(inputBytes(usersPath, messagesPath))).
		Msg("inputs loaded")

	assembler := report.NewAssembler(forest, attrs, sink, report.Options{
		DateLayout: cfg.Report.DateLayout,
		Location:   loc,
	})
	stats, err := assembler.Run(ctx)
	if err != nil {
		if abortErr := sink.Abort(); abortErr != nil {
			log.Warn().Err(abortErr).Msg("failed to discard partial report")
		}
		return err
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("finish report %s: %w", outPath, err)
	}

	event := log.Info().Str("output", outPath).Int("threads", stats.Threads).Int("rows", stats.Messages)
	if csvSink, ok := sink.(*report.CSVSink); ok {
		event = event.Str("size", humanize.Bytes(uint64(csvSink.Bytes())))
	}
	event.Msg("report written")

	return stats.Write(cmd.OutOrStdout(), cfg.StatsFormat())
}

func inputBytes(paths ...string) uint64 {
	var total uint64
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		total += uint64(info.Size())
	}
	return total
}
