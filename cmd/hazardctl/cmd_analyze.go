package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/hazardlens/internal/ai"
	"github.com/kiranshivaraju/hazardlens/internal/config"
	"github.com/kiranshivaraju/hazardlens/internal/pipeline"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

var analyzeFlags struct {
	image    string
	problems string
	out      string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Produce a recommendation archive for a room photo",
	Long: `Send a room photo to the configured model and write the resulting archive.

Usage:
  hazardctl analyze --image room.jpg --out archive.zip
  hazardctl analyze --image room.jpg --problems "poor balance, uses a walker"

The model provider is read from AI_PROVIDER and the matching *_API_KEY
variables (a .env file in the working directory is honored). No database
or Redis is needed.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.image, "image", "", "Path to the room photo (required)")
	f.StringVar(&analyzeFlags.problems, "problems", "", "Comma-separated physical problems of the resident")
	f.StringVarP(&analyzeFlags.out, "out", "o", "bounding_boxes.zip", "Output archive path")
	_ = analyzeCmd.MarkFlagRequired("image")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadParts(config.PartAI)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	return analyze(cmd, provider, pipeline.OptionsFromConfig(cfg.Pipeline, cfg.AI))
}

func analyze(cmd *cobra.Command, provider models.AIProvider, opts pipeline.Options) error {
	img, err := os.ReadFile(analyzeFlags.image)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	svc := pipeline.NewService(provider, opts, nil, nil, slog.Default())
	res, err := svc.Analyze(cmd.Context(), pipeline.AnalyzeParams{
		Image:    img,
		Problems: pipeline.SplitProblems(analyzeFlags.problems),
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(analyzeFlags.out, res.Archive.Data, 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, r := range res.Results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		rec := r.Record
		name := ""
		if rec.Metadata != nil {
			name = rec.Metadata.Modification
		}
		fmt.Fprintf(out, "%d. %s [%s]\n", rec.Index, name, status)
	}
	fmt.Fprintf(out, "wrote %s (%d entries)\n", analyzeFlags.out, len(res.Archive.Entries))
	return nil
}
