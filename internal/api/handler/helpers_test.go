package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kiranshivaraju/hazardlens/internal/archive"
	"github.com/kiranshivaraju/hazardlens/internal/pipeline"
	"github.com/kiranshivaraju/hazardlens/internal/report"
	"github.com/kiranshivaraju/hazardlens/internal/store"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

// --- fakes ---

type fakeAnalyzer struct {
	analyze  func(p pipeline.AnalyzeParams) (*pipeline.AnalyzeResult, error)
	problems func(audio []byte, mimeType string) ([]string, error)
}

func (f *fakeAnalyzer) Analyze(_ context.Context, p pipeline.AnalyzeParams) (*pipeline.AnalyzeResult, error) {
	return f.analyze(p)
}

func (f *fakeAnalyzer) ExtractProblems(_ context.Context, audio []byte, mimeType string) ([]string, error) {
	return f.problems(audio, mimeType)
}

type fakeReporter struct {
	calls int
	runID *uuid.UUID
	got   []int
	err   error
}

func (f *fakeReporter) Generate(_ context.Context, runID *uuid.UUID, indices []int) (*report.Document, error) {
	f.calls++
	f.runID = runID
	f.got = indices
	if f.err != nil {
		return nil, f.err
	}
	return &report.Document{PDF: []byte("%PDF-1.3 fake")}, nil
}

type fakeArchives struct {
	latest []byte
	byRun  map[uuid.UUID][]byte
}

func (f *fakeArchives) Latest(context.Context) ([]byte, error) {
	if f.latest == nil {
		return nil, archive.ErrArchiveNotFound
	}
	return f.latest, nil
}

func (f *fakeArchives) Load(_ context.Context, id uuid.UUID) ([]byte, error) {
	data, ok := f.byRun[id]
	if !ok {
		return nil, archive.ErrArchiveNotFound
	}
	return data, nil
}

type fakeRuns struct {
	runs      map[uuid.UUID]*models.Run
	listLimit int
}

func (f *fakeRuns) GetRun(_ context.Context, id uuid.UUID) (*models.Run, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return run, nil
}

func (f *fakeRuns) ListRuns(_ context.Context, limit int) ([]*models.Run, error) {
	f.listLimit = limit
	var out []*models.Run
	for _, r := range f.runs {
		out = append(out, r)
	}
	return out, nil
}

type fakeKeys struct {
	created []*models.APIKey
	revoked []uuid.UUID
	err     error
}

func (f *fakeKeys) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, key)
	return nil
}

func (f *fakeKeys) ListAPIKeys(context.Context) ([]*models.APIKey, error) {
	return f.created, f.err
}

func (f *fakeKeys) RevokeAPIKey(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.revoked = append(f.revoked, id)
	return nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

// --- helpers ---

// multipartReq builds a multipart request with a "file" part and extra
// form fields.
func multipartReq(t *testing.T, path, filename, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if data != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, path, &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

// withURLParam attaches a chi route parameter to r.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func parseErr(t *testing.T, rec *httptest.ResponseRecorder) (int, string) {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return rec.Code, env.Error.Code
}

func parseData(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func expectErr(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	status, code := parseErr(t, rec)
	if status != wantStatus {
		t.Errorf("expected %d, got %d", wantStatus, status)
	}
	if code != wantCode {
		t.Errorf("expected %s, got %s", wantCode, code)
	}
}
