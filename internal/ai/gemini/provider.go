// Package gemini implements models.AIProvider on the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/genai"

	"github.com/kiranshivaraju/hazardlens/internal/config"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

// Provider implements models.AIProvider using Gemini.
type Provider struct {
	cfg    config.GeminiConfig
	client *genai.Client
}

// NewProvider creates a Gemini provider. Deadlines come from the request
// context; the HTTP client itself has no timeout.
func NewProvider(cfg config.GeminiConfig) (*Provider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

func (p *Provider) Name() string { return "gemini" }

// Generate issues one generateContent call. Requests asking for image
// output are routed to the image model.
func (p *Provider) Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error) {
	model := p.cfg.Model
	if req.WantsImage() && p.cfg.ImageModel != "" {
		model = p.cfg.ImageModel
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, buildContents(req), buildConfig(req))
	if err != nil {
		return models.GenerateResponse{}, classifyError(err)
	}
	return parseCandidates(resp)
}

// buildContents puts media parts ahead of the prompt in a single user turn.
func buildContents(req models.GenerateRequest) []*genai.Content {
	parts := make([]*genai.Part, 0, len(req.Media)+1)
	for _, m := range req.Media {
		parts = append(parts, genai.NewPartFromBytes(m.Data, m.MimeType))
	}
	if req.Prompt != "" {
		parts = append(parts, genai.NewPartFromText(req.Prompt))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func buildConfig(req models.GenerateRequest) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
		SafetySettings: []*genai.SafetySetting{{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdBlockOnlyHigh,
		}},
	}
	for _, m := range req.Modalities {
		gc.ResponseModalities = append(gc.ResponseModalities, string(m))
	}
	if req.SystemInstruction != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	return gc
}

func parseCandidates(resp *genai.GenerateContentResponse) (models.GenerateResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		reason := "no candidates"
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			reason = "prompt blocked: " + string(resp.PromptFeedback.BlockReason)
		}
		return models.GenerateResponse{}, fmt.Errorf("%w: %s", models.ErrInvalidResponse, reason)
	}

	var out models.GenerateResponse
	c := resp.Candidates[0]
	if c.Content == nil {
		return out, nil
	}
	for _, p := range c.Content.Parts {
		switch {
		case p == nil:
		case p.InlineData != nil:
			out.Parts = append(out.Parts, models.Part{InlineData: &models.Media{
				MimeType: p.InlineData.MIMEType,
				Data:     p.InlineData.Data,
			}})
		case p.Text != "":
			out.Parts = append(out.Parts, models.Part{Text: p.Text})
		}
	}
	return out, nil
}

// classifyError maps SDK and transport errors to sentinel errors.
// Cancellation is passed through so callers can tell a caller hang-up
// from a slow model.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("gemini generate: %w", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code >= 500 || apiErr.Code == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
		}
		return fmt.Errorf("%w: %v", models.ErrInvalidResponse, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
		}
		return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
	}

	// Anything else is a body the SDK could not decode.
	return fmt.Errorf("%w: %v", models.ErrInvalidResponse, err)
}

// Compile-time check that Provider implements AIProvider.
var _ models.AIProvider = (*Provider)(nil)
