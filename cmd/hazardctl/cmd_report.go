package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/hazardlens/internal/report"
)

var reportFlags struct {
	archive string
	indexes string
	out     string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compose a PDF from selected recommendations of an archive",
	Long: `Compose a PDF report from an archive written by "hazardctl analyze"
or downloaded from the server.

Usage:
  hazardctl report --archive bounding_boxes.zip --indexes 1,3 --out report.pdf

Sections appear in the order given; indexes without an after image are
skipped.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportFlags.archive, "archive", "bounding_boxes.zip", "Archive to read")
	f.StringVar(&reportFlags.indexes, "indexes", "", "Comma-separated recommendation indexes (required)")
	f.StringVarP(&reportFlags.out, "out", "o", "home_safety_report.pdf", "Output PDF path")
	_ = reportCmd.MarkFlagRequired("indexes")
}

func runReport(cmd *cobra.Command, _ []string) error {
	indices, err := report.ParseIndices(reportFlags.indexes)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(reportFlags.archive)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	composer := report.NewComposer(func() report.Renderer { return report.NewPDFRenderer() }, slog.Default())
	doc, err := composer.Compose(cmd.Context(), data, indices)
	if err != nil {
		return err
	}

	if err := os.WriteFile(reportFlags.out, doc.PDF, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d sections)\n", reportFlags.out, len(doc.Sections))
	return nil
}
