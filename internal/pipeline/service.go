package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/hazardlens/internal/archive"
	"github.com/kiranshivaraju/hazardlens/internal/store"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

// RunRecorder is the part of store.Store the service needs.
type RunRecorder interface {
	CreateRun(ctx context.Context, run *models.Run) error
	UpdateRunStatus(ctx context.Context, id uuid.UUID, status string, opts ...store.RunUpdateOption) error
}

// Service runs the full analyze flow: orchestrate, assemble, snapshot, record.
type Service struct {
	orch     *Orchestrator
	provider models.AIProvider
	runs     RunRecorder
	snaps    archive.Snapshotter
	logger   *slog.Logger
}

// NewService wires a Service. runs and snaps may be nil, in which case run
// bookkeeping or snapshotting is skipped.
func NewService(provider models.AIProvider, opts Options, runs RunRecorder, snaps archive.Snapshotter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		orch:     NewOrchestrator(provider, opts, logger),
		provider: provider,
		runs:     runs,
		snaps:    snaps,
		logger:   logger,
	}
}

type AnalyzeParams struct {
	Image    []byte
	Problems []string
}

type AnalyzeResult struct {
	RunID           uuid.UUID
	Archive         *archive.Bundle
	Recommendations []models.Recommendation
	Results         []IndexResult
}

// finishTimeout bounds the bookkeeping writes that run after the request
// context is detached.
const finishTimeout = 10 * time.Second

// Analyze processes one uploaded photo. The returned bundle is authoritative;
// a failed snapshot write is logged and does not fail the call.
func (s *Service) Analyze(ctx context.Context, p AnalyzeParams) (*AnalyzeResult, error) {
	start := time.Now()
	src, err := s.orch.Prepare(p.Image)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := &models.Run{
		ID:          uuid.New(),
		Status:      models.RunStatusRunning,
		Provider:    s.provider.Name(),
		ImageWidth:  src.Width(),
		ImageHeight: src.Height(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if s.runs != nil {
		if err := s.runs.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("recording run: %w", err)
		}
	}
	log := s.logger.With("run_id", run.ID)
	log.Info("analyze started", "width", run.ImageWidth, "height", run.ImageHeight, "problems", len(p.Problems))

	out, err := s.orch.Run(ctx, src, p.Problems)
	if err != nil {
		s.fail(run.ID, err)
		pipelineDuration.WithLabelValues(outcomeError).Observe(time.Since(start).Seconds())
		return nil, err
	}

	bundle, err := archive.Assemble(out.Records())
	if err != nil {
		s.fail(run.ID, err)
		pipelineDuration.WithLabelValues(outcomeError).Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("assembling archive: %w", err)
	}

	// The work is done; a caller hanging up now must not lose the snapshot
	// or leave the run stuck in running.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	if s.snaps != nil {
		if err := s.snaps.Save(finishCtx, run.ID, bundle.Data); err != nil {
			log.Error("snapshot write failed", "error", err)
		}
	}

	if s.runs != nil {
		err := s.runs.UpdateRunStatus(finishCtx, run.ID, models.RunStatusCompleted,
			store.WithEntries(bundle.Entries),
			store.WithRecommendationCount(len(out.Recommendations)))
		if err != nil {
			log.Error("failed to mark run completed", "error", err)
		}
	}

	pipelineDuration.WithLabelValues(outcomeOK).Observe(time.Since(start).Seconds())
	log.Info("analyze completed", "recommendations", len(out.Recommendations),
		"entries", len(bundle.Entries), "duration_ms", time.Since(start).Milliseconds())

	return &AnalyzeResult{
		RunID:           run.ID,
		Archive:         bundle,
		Recommendations: out.Recommendations,
		Results:         out.Results,
	}, nil
}

// fail marks a run failed. It uses a fresh context so a cancelled request
// still leaves a terminal status behind.
func (s *Service) fail(id uuid.UUID, cause error) {
	if s.runs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()
	if err := s.runs.UpdateRunStatus(ctx, id, models.RunStatusFailed, store.WithErrorMessage(cause.Error())); err != nil {
		s.logger.Error("failed to mark run failed", "run_id", id, "error", err)
	}
}

// ExtractProblems asks the model for the resident's physical problems
// described in an audio clip.
func (s *Service) ExtractProblems(ctx context.Context, audio []byte, mimeType string) ([]string, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidAudio)
	}
	resp, err := s.orch.call(ctx, callTranscribe, models.GenerateRequest{
		Prompt: problemsPrompt,
		Media:  []models.Media{{MimeType: mimeType, Data: audio}},
	})
	if err != nil {
		return nil, fmt.Errorf("extracting problems: %w", err)
	}
	modelCalls.WithLabelValues(callTranscribe, outcomeOK).Inc()
	return SplitProblems(resp.Text()), nil
}

// SplitProblems splits a comma or newline separated list, dropping blanks.
func SplitProblems(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
