package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/hazardlens/internal/api/response"
	"github.com/kiranshivaraju/hazardlens/internal/report"
)

const reportFilename = "home_safety_report.pdf"

// Reporter composes PDF reports from stored archives.
type Reporter interface {
	Generate(ctx context.Context, runID *uuid.UUID, indices []int) (*report.Document, error)
}

// NewReportHandler returns an http.HandlerFunc for POST /api/v1/reports.
// Form fields: "indexes" (required, e.g. "1,3") and "run_id" (optional;
// defaults to the latest archive).
func NewReportHandler(svc Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indices, err := report.ParseIndices(r.FormValue("indexes"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		var runID *uuid.UUID
		if raw := strings.TrimSpace(r.FormValue("run_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				badRequest(w, "run_id must be a UUID")
				return
			}
			runID = &id
		}

		doc, err := svc.Generate(r.Context(), runID, indices)
		if err != nil {
			writeError(w, r, err)
			return
		}

		response.Attachment(w, "application/pdf", reportFilename, doc.PDF)
	}
}
