// Package openai implements models.AIProvider on the Chat Completions API.
// Any OpenAI-compatible endpoint (vLLM, Azure proxies) works via BaseURL.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kiranshivaraju/hazardlens/internal/config"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

// Provider implements models.AIProvider using OpenAI.
// It only produces text; image modality requests yield text parts only.
type Provider struct {
	cfg    config.OpenAIConfig
	client *goopenai.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	cc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &Provider{cfg: cfg, client: goopenai.NewClientWithConfig(cc)}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error) {
	user := make([]goopenai.ChatMessagePart, 0, len(req.Media)+1)
	for _, m := range req.Media {
		if !strings.HasPrefix(m.MimeType, "image/") {
			return models.GenerateResponse{}, fmt.Errorf("%w: openai provider cannot accept %s input",
				models.ErrProviderUnavailable, m.MimeType)
		}
		user = append(user, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    "data:" + m.MimeType + ";base64," + base64.StdEncoding.EncodeToString(m.Data),
				Detail: goopenai.ImageURLDetailAuto,
			},
		})
	}
	user = append(user, goopenai.ChatMessagePart{Type: goopenai.ChatMessagePartTypeText, Text: req.Prompt})

	var msgs []goopenai.ChatCompletionMessage
	if req.SystemInstruction != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{
		Role:         goopenai.ChatMessageRoleUser,
		MultiContent: user,
	})

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		Messages:    msgs,
		Temperature: req.Temperature,
	})
	if err != nil {
		return models.GenerateResponse{}, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return models.GenerateResponse{}, fmt.Errorf("%w: no choices", models.ErrInvalidResponse)
	}

	return models.GenerateResponse{
		Parts: []models.Part{{Text: resp.Choices[0].Message.Content}},
	}, nil
}

// classifyError maps client errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("openai generate: %w", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
	}
	return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
}

func statusError(code int, err error) error {
	if code >= 500 || code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
	}
	return fmt.Errorf("%w: %v", models.ErrInvalidResponse, err)
}

var _ models.AIProvider = (*Provider)(nil)
