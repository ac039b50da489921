package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/use-agent/tiercards/config"
)

// version is set at build time via -ldflags.
var version = "dev"

// cfg is loaded from the environment before any subcommand runs; flags
// then override individual fields.
var cfg *config.Config

var rootFlags struct {
	logLevel     string
	logFormat    string
	snapshotPath string
}

var rootCmd = &cobra.Command{
	Use:   "tiercards",
	Short: "Scrape tier-list pages into a JSON snapshot and export it as CSV",
	Long: "tiercards visits the published tier-list pages in a headless browser,\n" +
		"extracts every card with its tier and score, and writes an ordered JSON\n" +
		"snapshot. The export command turns that snapshot into a semicolon CSV.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg = config.Load()
		if rootFlags.logLevel != "" {
			cfg.Log.Level = rootFlags.logLevel
		}
		if rootFlags.logFormat != "" {
			cfg.Log.Format = rootFlags.logFormat
		}
		if rootFlags.snapshotPath != "" {
			cfg.Output.SnapshotPath = rootFlags.snapshotPath
		}
		initLogger(cfg.Log)
		return nil
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (env TIER_LOG_LEVEL)")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json (env TIER_LOG_FORMAT)")
	f.StringVar(&rootFlags.snapshotPath, "snapshot", "", "Snapshot file path (env TIER_SNAPSHOT_PATH)")

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

// initLogger configures slog based on the LogConfig. Logs go to stderr so
// report output on stdout stays clean.
func initLogger(lc config.LogConfig) {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
