package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kiranshivaraju/hazardlens/internal/api/response"
	"github.com/kiranshivaraju/hazardlens/internal/pipeline"
)

const (
	archiveContentType = "application/x-zip-compressed"
	archiveFilename    = "bounding_boxes.zip"
)

// Analyzer runs the annotation pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, p pipeline.AnalyzeParams) (*pipeline.AnalyzeResult, error)
	ExtractProblems(ctx context.Context, audio []byte, mimeType string) ([]string, error)
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/analyze.
// The body is multipart with a "file" image and an optional comma-separated
// "problems" field; the response is the archive itself.
func NewAnalyzeHandler(svc Analyzer, maxUpload int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, err := readUpload(w, r, maxUpload)
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		result, err := svc.Analyze(r.Context(), pipeline.AnalyzeParams{
			Image:    up.data,
			Problems: pipeline.SplitProblems(r.FormValue("problems")),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("X-Run-ID", result.RunID.String())
		w.Header().Set("X-Recommendation-Count", strconv.Itoa(len(result.Recommendations)))
		response.Attachment(w, archiveContentType, archiveFilename, result.Archive.Data)
	}
}

// NewProblemsHandler returns an http.HandlerFunc for POST /api/v1/problems.
// It turns a recorded description into a list of problems.
func NewProblemsHandler(svc Analyzer, maxUpload int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, err := readUpload(w, r, maxUpload)
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		problems, err := svc.ExtractProblems(r.Context(), up.data, up.mimeType)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, map[string]any{"problems": problems})
	}
}
