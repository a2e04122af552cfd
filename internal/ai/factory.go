package ai

import (
	"fmt"

	"github.com/kiranshivaraju/hazardlens/internal/ai/gemini"
	"github.com/kiranshivaraju/hazardlens/internal/ai/openai"
	"github.com/kiranshivaraju/hazardlens/internal/config"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

// NewProvider constructs the appropriate AI provider based on config.
// Called once at startup.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "gemini":
		p, err := gemini.NewProvider(cfg.Gemini)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of gemini, openai", cfg.Provider)
	}
}
