package ai

import "github.com/kiranshivaraju/hazardlens/pkg/models"

// Provider packages return these; callers match them with errors.Is.
var (
	ErrProviderUnavailable = models.ErrProviderUnavailable
	ErrInferenceTimeout    = models.ErrInferenceTimeout
	ErrInvalidResponse     = models.ErrInvalidResponse
)
