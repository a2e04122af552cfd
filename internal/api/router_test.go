package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kiranshivaraju/hazardlens/internal/api"
	mw "github.com/kiranshivaraju/hazardlens/internal/api/middleware"
	"github.com/kiranshivaraju/hazardlens/internal/cache"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

const (
	readKey  = "hl_read0_0123456789abcdef"
	adminKey = "hl_admin_0123456789abcdef"
)

// --- stub key lookup ---

type stubKeys struct {
	keys map[string]*models.APIKey
}

func newStubKeys(t *testing.T) *stubKeys {
	t.Helper()
	s := &stubKeys{keys: map[string]*models.APIKey{}}
	for raw, scopes := range map[string][]string{readKey: {"read"}, adminKey: {"read", "admin"}} {
		h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
		require.NoError(t, err)
		s.keys[raw[:8]] = &models.APIKey{ID: uuid.New(), KeyHash: string(h), KeyPrefix: raw[:8], Scopes: scopes}
	}
	return s
}

func (s *stubKeys) GetAPIKeyByPrefix(_ context.Context, prefix string) ([]*models.APIKey, error) {
	if k, ok := s.keys[prefix]; ok {
		return []*models.APIKey{k}, nil
	}
	return nil, nil
}
func (s *stubKeys) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }

// --- stub cache ---

type stubCache struct{}

func (c *stubCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *stubCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *stubCache) Delete(_ context.Context, _ string) error                          { return nil }
func (c *stubCache) Ping(_ context.Context) error                                      { return nil }
func (c *stubCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

// --- router tests ---

func named(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(name))
	}
}

func newTestRouter(t *testing.T) http.Handler {
	return api.NewRouter(api.Dependencies{
		Auth:             mw.NewAuth(newStubKeys(t)),
		RateLimit:        mw.NewRateLimit(&stubCache{}, 60),
		HealthHandler:    named("health"),
		AnalyzeHandler:   named("analyze"),
		ProblemsHandler:  named("problems"),
		ReportHandler:    named("report"),
		LatestArchive:    named("archive"),
		ListRuns:         named("runs"),
		GetRun:           named("run"),
		RunArchive:       named("run-archive"),
		CreateKeyHandler: named("create-key"),
		ListKeysHandler:  named("list-keys"),
	})
}

func TestRouter_HealthEndpoint_Public(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Metrics_Public(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_ProtectedEndpoints_RequireAuth(t *testing.T) {
	router := newTestRouter(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/analyze"},
		{"POST", "/api/v1/problems"},
		{"POST", "/api/v1/reports"},
		{"GET", "/api/v1/archive"},
		{"GET", "/api/v1/runs"},
		{"GET", "/api/v1/runs/" + uuid.NewString()},
		{"GET", "/api/v1/runs/" + uuid.NewString() + "/archive"},
		{"POST", "/api/v1/admin/keys"},
		{"GET", "/api/v1/admin/keys"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "INVALID_TOKEN", errObj["code"])
		})
	}
}

func TestRouter_RoutesAuthenticated(t *testing.T) {
	router := newTestRouter(t)
	id := uuid.NewString()

	tests := []struct {
		method, path, want string
	}{
		{"POST", "/api/v1/analyze", "analyze"},
		{"POST", "/api/v1/problems", "problems"},
		{"POST", "/api/v1/reports", "report"},
		{"GET", "/api/v1/archive", "archive"},
		{"GET", "/api/v1/runs", "runs"},
		{"GET", "/api/v1/runs/" + id, "run"},
		{"GET", "/api/v1/runs/" + id + "/archive", "run-archive"},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+readKey)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, tc.path)
		assert.Equal(t, tc.want, w.Body.String(), tc.path)
		assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"), tc.path)
	}
}

func TestRouter_AdminRequiresScope(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/admin/keys", nil)
	req.Header.Set("Authorization", "Bearer "+readKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest("GET", "/api/v1/admin/keys", nil)
	req.Header.Set("Authorization", "Bearer "+adminKey)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "list-keys", w.Body.String())
}

func TestRouter_UnwiredHandlerIsNotImplemented(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("DELETE", "/api/v1/admin/keys/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+adminKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "RESOURCE_NOT_FOUND"))
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/analyze", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

var _ cache.Cache = (*stubCache)(nil)
var _ mw.KeyLookup = (*stubKeys)(nil)
