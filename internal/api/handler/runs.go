package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/hazardlens/internal/api/response"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// RunReader reads pipeline run records.
type RunReader interface {
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*models.Run, error)
}

// NewListRunsHandler returns an http.HandlerFunc for GET /api/v1/runs.
func NewListRunsHandler(runs RunReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRunLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxRunLimit {
				badRequest(w, "limit must be an integer between 1 and 100")
				return
			}
			limit = n
		}

		list, err := runs.ListRuns(r.Context(), limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if list == nil {
			list = []*models.Run{}
		}
		response.List(w, list, response.ListMeta{Limit: limit, Count: len(list)})
	}
}

// NewGetRunHandler returns an http.HandlerFunc for GET /api/v1/runs/{runID}.
func NewGetRunHandler(runs RunReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "runID")
		if !ok {
			return
		}
		run, err := runs.GetRun(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, run)
	}
}
