package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/use-agent/tiercards/export"
)

var exportFlags struct {
	out string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert the snapshot into a semicolon-delimited CSV",
	Long: "export reads and validates the snapshot written by scrape and writes a\n" +
		"UTF-8 (with BOM) semicolon CSV. It never opens a browser and never\n" +
		"modifies the snapshot.",
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.out, "out", "o", "", "CSV output path (env TIER_EXPORT_PATH)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	if exportFlags.out != "" {
		cfg.Output.ExportPath = exportFlags.out
	}

	n, err := export.File(cfg.Output.SnapshotPath, cfg.Output.ExportPath)
	if err != nil {
		return err
	}
	slog.Info("export written",
		"snapshot", cfg.Output.SnapshotPath,
		"path", cfg.Output.ExportPath,
		"cards", n,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cards → %s\n", n, cfg.Output.ExportPath)
	return nil
}
