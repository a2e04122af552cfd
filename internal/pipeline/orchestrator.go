// Package pipeline turns an uploaded room photo into per-recommendation
// artifacts: text metadata, an annotated preview and a generated "after" image.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kiranshivaraju/hazardlens/internal/archive"
	"github.com/kiranshivaraju/hazardlens/internal/config"
	"github.com/kiranshivaraju/hazardlens/pkg/bbox"
	"github.com/kiranshivaraju/hazardlens/pkg/extract"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

// Options bounds the work done per image.
type Options struct {
	MaxRecommendations int
	Concurrency        int
	MaxImageDim        int
	InferenceTimeout   time.Duration
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(p config.PipelineConfig, ai config.AIConfig) Options {
	return Options{
		MaxRecommendations: p.MaxRecommendations,
		Concurrency:        p.Concurrency,
		MaxImageDim:        p.MaxImageDim,
		InferenceTimeout:   ai.InferenceTimeout,
	}
}

// IndexResult is the outcome of one recommendation's task. Record is always
// usable; Err carries the soft failure that left artifacts out, if any.
type IndexResult struct {
	Record archive.Record
	Err    error
}

// Output is everything one orchestrator run produced.
type Output struct {
	Recommendations []models.Recommendation
	Results         []IndexResult
}

// Records returns the archive records in index order.
func (o *Output) Records() []archive.Record {
	out := make([]archive.Record, len(o.Results))
	for i, r := range o.Results {
		out[i] = r.Record
	}
	return out
}

// Orchestrator drives the model calls for one image.
type Orchestrator struct {
	provider models.AIProvider
	opts     Options
	logger   *slog.Logger
}

func NewOrchestrator(provider models.AIProvider, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{provider: provider, opts: opts, logger: logger}
}

// Prepare decodes and downsizes an upload for model calls.
func (o *Orchestrator) Prepare(upload []byte) (*SourceImage, error) {
	return prepareImage(upload, o.opts.MaxImageDim)
}

// Run produces the recommendation list, then fans out one task per
// recommendation. Only a failure of the list call (or cancellation) fails
// the run; per-index problems are reported in IndexResult.Err.
func (o *Orchestrator) Run(ctx context.Context, src *SourceImage, problems []string) (*Output, error) {
	recs, err := o.ProduceRecommendations(ctx, src, problems)
	if err != nil {
		return nil, err
	}

	results := make([]IndexResult, len(recs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Concurrency)
	for i, rec := range recs {
		g.Go(func() error {
			results[i] = o.produceRecord(gctx, src, rec)
			return nil
		})
	}
	_ = g.Wait() // errors captured in IndexResult.Err

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Output{Recommendations: recs, Results: results}, nil
}

// ProduceRecommendations asks the model for mitigation suggestions and keeps
// the first MaxRecommendations, indexed 1..n in model order.
func (o *Orchestrator) ProduceRecommendations(ctx context.Context, src *SourceImage, problems []string) ([]models.Recommendation, error) {
	resp, err := o.call(ctx, callRecommend, models.GenerateRequest{
		Prompt: recommendationsPrompt(problems, o.opts.MaxRecommendations),
		Media:  src.Media(),
	})
	if err != nil {
		return nil, fmt.Errorf("requesting recommendations: %w", err)
	}

	var recs []models.Recommendation
	if err := extract.DecodeValidated(resp.Text(), recommendationSchema, &recs); err != nil {
		modelCalls.WithLabelValues(callRecommend, outcomeError).Inc()
		return nil, err
	}
	modelCalls.WithLabelValues(callRecommend, outcomeOK).Inc()

	if len(recs) > o.opts.MaxRecommendations {
		recs = recs[:o.opts.MaxRecommendations]
	}
	for i := range recs {
		recs[i].Index = i + 1
	}
	return recs, nil
}

func (o *Orchestrator) produceRecord(ctx context.Context, src *SourceImage, rec models.Recommendation) IndexResult {
	log := o.logger.With("index", rec.Index)
	record := archive.Record{
		Index: rec.Index,
		Metadata: &archive.Metadata{
			Rationale:    rec.Rationale,
			Modification: rec.Modification,
			Cost:         rec.Cost,
			Installation: rec.Installation,
		},
	}
	artifactsProduced.WithLabelValues(string(archive.KindMetadata)).Inc()

	box, err := o.locate(ctx, src, rec)
	if err != nil {
		log.Warn("no placement for recommendation", "error", err)
		return IndexResult{Record: record, Err: err}
	}

	px := bbox.ToPixel(box, src.Width(), src.Height())
	preview, err := encodePNG(drawPreview(src.Image, px))
	if err != nil {
		return IndexResult{Record: record, Err: err}
	}
	record.Preview = preview
	artifactsProduced.WithLabelValues(string(archive.KindPreview)).Inc()

	after, err := o.visualize(ctx, src, rec)
	if err != nil {
		log.Warn("no after image for recommendation", "error", err)
		return IndexResult{Record: record, Err: err}
	}
	record.After = after
	artifactsProduced.WithLabelValues(string(archive.KindAfter)).Inc()

	return IndexResult{Record: record}
}

// locate returns the first box the model proposes for rec.
func (o *Orchestrator) locate(ctx context.Context, src *SourceImage, rec models.Recommendation) (bbox.Normalized, error) {
	resp, err := o.call(ctx, callLocate, models.GenerateRequest{
		Prompt:            placementPrompt(rec.Modification),
		SystemInstruction: placementInstruction,
		Media:             src.Media(),
	})
	if err != nil {
		return bbox.Normalized{}, err
	}

	var placements []placement
	if err := extract.DecodeValidated(resp.Text(), placementSchema, &placements); err != nil {
		modelCalls.WithLabelValues(callLocate, outcomeError).Inc()
		return bbox.Normalized{}, err
	}
	if len(placements) == 0 {
		modelCalls.WithLabelValues(callLocate, outcomeEmpty).Inc()
		return bbox.Normalized{}, fmt.Errorf("%w: no bounding box", ErrEmptyResult)
	}
	modelCalls.WithLabelValues(callLocate, outcomeOK).Inc()
	return placements[0].Box, nil
}

// visualize asks for an edited photo and returns it as PNG.
func (o *Orchestrator) visualize(ctx context.Context, src *SourceImage, rec models.Recommendation) ([]byte, error) {
	resp, err := o.call(ctx, callVisualize, models.GenerateRequest{
		Prompt:     visualizationPrompt(rec.Modification),
		Media:      src.Media(),
		Modalities: []models.Modality{models.ModalityText, models.ModalityImage},
	})
	if err != nil {
		return nil, err
	}

	img, ok := resp.FirstImage()
	if !ok {
		modelCalls.WithLabelValues(callVisualize, outcomeEmpty).Inc()
		return nil, fmt.Errorf("%w: no image part", ErrEmptyResult)
	}
	data, err := toPNG(img.Data)
	if err != nil {
		modelCalls.WithLabelValues(callVisualize, outcomeError).Inc()
		return nil, fmt.Errorf("%w: %v", ErrEmptyResult, err)
	}
	modelCalls.WithLabelValues(callVisualize, outcomeOK).Inc()
	return data, nil
}

// call issues exactly one model request under the per-call timeout.
// Transport failures are counted here; payload outcomes by the caller.
func (o *Orchestrator) call(ctx context.Context, name string, req models.GenerateRequest) (models.GenerateResponse, error) {
	if o.opts.InferenceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.InferenceTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := o.provider.Generate(ctx, req)
	if err != nil {
		modelCalls.WithLabelValues(name, outcomeError).Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
		}
		return models.GenerateResponse{}, err
	}
	o.logger.Debug("model call complete", "call", name, "provider", o.provider.Name(),
		"duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}
