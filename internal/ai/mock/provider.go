package mock

import (
	"context"
	"sync"

	"github.com/kiranshivaraju/hazardlens/internal/ai"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

// MockProvider satisfies models.AIProvider for testing.
// GenerateFunc may be called concurrently; Calls records every request.
type MockProvider struct {
	Name_        string
	GenerateFunc func(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error)

	mu    sync.Mutex
	calls []models.GenerateRequest
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Generate(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return models.GenerateResponse{}, nil
}

// Calls returns a copy of every request seen so far.
func (m *MockProvider) Calls() []models.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.GenerateRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// TextResponse wraps s as a single text part.
func TextResponse(s string) models.GenerateResponse {
	return models.GenerateResponse{Parts: []models.Part{{Text: s}}}
}

// ImageResponse returns a short caption followed by one inline image.
func ImageResponse(mime string, data []byte) models.GenerateResponse {
	return models.GenerateResponse{Parts: []models.Part{
		{Text: "Here is the modified image."},
		{InlineData: &models.Media{MimeType: mime, Data: data}},
	}}
}

// NewMockProvider returns a MockProvider that answers every call with text.
func NewMockProvider(text string) *MockProvider {
	return &MockProvider{
		Name_: "mock",
		GenerateFunc: func(_ context.Context, _ models.GenerateRequest) (models.GenerateResponse, error) {
			return TextResponse(text), nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		GenerateFunc: func(_ context.Context, _ models.GenerateRequest) (models.GenerateResponse, error) {
			return models.GenerateResponse{}, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		GenerateFunc: func(ctx context.Context, _ models.GenerateRequest) (models.GenerateResponse, error) {
			<-ctx.Done()
			return models.GenerateResponse{}, ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
