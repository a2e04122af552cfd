package report

import (
	"context"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/hazardlens/internal/archive"
)

// Service composes reports from stored snapshots.
type Service struct {
	snaps    archive.Snapshotter
	composer *Composer
}

func NewService(snaps archive.Snapshotter, composer *Composer) *Service {
	return &Service{snaps: snaps, composer: composer}
}

// Generate composes a report from the given run's archive, or from the
// latest one when runID is nil. Returns archive.ErrArchiveNotFound when
// there is nothing to read.
func (s *Service) Generate(ctx context.Context, runID *uuid.UUID, indices []int) (*Document, error) {
	var (
		data []byte
		err  error
	)
	if runID != nil {
		data, err = s.snaps.Load(ctx, *runID)
	} else {
		data, err = s.snaps.Latest(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.composer.Compose(ctx, data, indices)
}
