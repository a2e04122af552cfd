package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/hazardlens/internal/ai"
	"github.com/kiranshivaraju/hazardlens/internal/api/response"
	"github.com/kiranshivaraju/hazardlens/internal/archive"
	"github.com/kiranshivaraju/hazardlens/internal/pipeline"
	"github.com/kiranshivaraju/hazardlens/internal/report"
	"github.com/kiranshivaraju/hazardlens/internal/store"
	"github.com/kiranshivaraju/hazardlens/pkg/extract"
)

// writeError maps domain errors to a status and stable error code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		pfe *extract.PayloadFormatError
		ipe *report.IndexParseError
	)
	switch {
	case errors.As(err, &ipe):
		response.Error(w, http.StatusBadRequest, "INVALID_INDEXES", ipe.Error(),
			map[string]string{"item": ipe.Item})
	case errors.Is(err, pipeline.ErrInvalidImage):
		response.Error(w, http.StatusBadRequest, "INVALID_IMAGE", err.Error(), nil)
	case errors.Is(err, pipeline.ErrInvalidAudio):
		response.Error(w, http.StatusBadRequest, "INVALID_AUDIO", err.Error(), nil)
	case errors.Is(err, archive.ErrArchiveNotFound):
		response.Error(w, http.StatusNotFound, "ARCHIVE_NOT_FOUND",
			"No archive has been produced yet", nil)
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found", nil)
	case errors.As(err, &pfe):
		response.Error(w, http.StatusBadGateway, "MODEL_PAYLOAD_INVALID",
			"The model returned a payload that could not be parsed", nil)
	case errors.Is(err, ai.ErrInferenceTimeout):
		response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
			"The model took too long and the call was cancelled", nil)
	case errors.Is(err, ai.ErrProviderUnavailable):
		response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
			"The AI provider is not available", nil)
	case errors.Is(err, ai.ErrInvalidResponse):
		response.Error(w, http.StatusBadGateway, "AI_INVALID_RESPONSE",
			"The AI provider returned an unusable response", nil)
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads this.
		slog.Info("request cancelled", "path", r.URL.Path)
		response.Error(w, http.StatusServiceUnavailable, "REQUEST_CANCELLED", "Request cancelled", nil)
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
}
