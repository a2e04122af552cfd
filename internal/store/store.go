package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error

	CreateRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*models.Run, error)
	UpdateRunStatus(ctx context.Context, id uuid.UUID, status string, opts ...RunUpdateOption) error
}

type runUpdateParams struct {
	ErrorMessage        *string
	Entries             []string
	RecommendationCount *int
}

type RunUpdateOption func(*runUpdateParams)

func WithErrorMessage(msg string) RunUpdateOption {
	return func(p *runUpdateParams) {
		p.ErrorMessage = &msg
	}
}

// WithEntries records the archive entry names, in write order.
func WithEntries(entries []string) RunUpdateOption {
	return func(p *runUpdateParams) {
		p.Entries = entries
	}
}

func WithRecommendationCount(n int) RunUpdateOption {
	return func(p *runUpdateParams) {
		p.RecommendationCount = &n
	}
}
