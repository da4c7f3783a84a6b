package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/shopsavvy/internal"
	"github.com/iksnae/shopsavvy/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
	insightID int64
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored insights to a file",
	Long: `Export stored insight records to various formats (jsonl, md, yaml, json).

All records go to insights.<ext>; with --id a single record goes to
insight_<id>.<ext>. Use 'shopsavvy list' to see available ids.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		s, err := loadSettings()
		if err != nil {
			return err
		}
		db, store, err := openStore(s)
		if err != nil {
			return err
		}
		defer db.Close()

		var records []*internal.InsightRecord
		filename := "insights." + exporter.Extension()
		if cmd.Flags().Changed("id") {
			rec, err := store.GetInsight(ctx, insightID)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("insight not found: %d (use 'shopsavvy list' to see stored insights)", insightID)
			}
			if err != nil {
				return err
			}
			records = []*internal.InsightRecord{rec}
			filename = fmt.Sprintf("insight_%d.%s", insightID, exporter.Extension())
		} else {
			records, err = store.ListInsights(ctx, 0)
			if err != nil {
				return err
			}
		}

		if len(records) == 0 {
			internal.PrintWarning("No insights to export")
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return &internal.ExportError{Format: format, Path: outputDir, Err: err}
		}
		path := filepath.Join(outputDir, filename)

		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d insight(s) to %s", len(records), path), func() error {
			return writeExport(exporter, records, path)
		})
		if err != nil {
			var exportErr *internal.ExportError
			if errors.As(err, &exportErr) {
				return err
			}
			return &internal.ExportError{Format: format, Path: path, Err: err}
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d insight(s) exported to %s", len(records), path))
		return nil
	},
}

func writeExport(exporter export.Exporter, records []*internal.InsightRecord, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.Export(records, file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().Int64Var(&insightID, "id", 0, "Export a single insight by id")
}
