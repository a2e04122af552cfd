package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kiranshivaraju/hazardlens/internal/api/response"
)

// ArchiveSource reads stored archive snapshots.
type ArchiveSource interface {
	Latest(ctx context.Context) ([]byte, error)
	Load(ctx context.Context, runID uuid.UUID) ([]byte, error)
}

// NewLatestArchiveHandler returns an http.HandlerFunc for GET /api/v1/archive.
func NewLatestArchiveHandler(src ArchiveSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := src.Latest(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Attachment(w, archiveContentType, archiveFilename, data)
	}
}

// NewRunArchiveHandler returns an http.HandlerFunc for
// GET /api/v1/runs/{runID}/archive.
func NewRunArchiveHandler(src ArchiveSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "runID")
		if !ok {
			return
		}
		data, err := src.Load(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Attachment(w, archiveContentType, archiveFilename, data)
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		badRequest(w, param+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
