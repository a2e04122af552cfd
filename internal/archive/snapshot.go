package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/hazardlens/internal/cache"
)

// ErrArchiveNotFound is returned when no snapshot exists for the request.
var ErrArchiveNotFound = errors.New("archive not found")

// Snapshotter persists assembled archives so the report stage can re-read
// them. Save replaces the latest snapshot and records a per-run copy.
type Snapshotter interface {
	Save(ctx context.Context, runID uuid.UUID, data []byte) error
	Latest(ctx context.Context) ([]byte, error)
	Load(ctx context.Context, runID uuid.UUID) ([]byte, error)
}

// FileSnapshot keeps the latest archive at a fixed path and per-run copies
// under a runs/ directory next to it.
type FileSnapshot struct {
	path      string
	retention time.Duration
	now       func() time.Time
	mu        sync.Mutex
}

// FileOption configures a FileSnapshot.
type FileOption func(*FileSnapshot)

// WithRetention expires per-run copies older than d. Expired copies are
// removed on the next Save and are not returned by Load. Zero keeps
// every copy.
func WithRetention(d time.Duration) FileOption {
	return func(s *FileSnapshot) {
		s.retention = d
	}
}

func NewFileSnapshot(path string, opts ...FileOption) *FileSnapshot {
	s := &FileSnapshot{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileSnapshot) runsDir() string {
	return filepath.Join(filepath.Dir(s.path), "runs")
}

func (s *FileSnapshot) runPath(runID uuid.UUID) string {
	return filepath.Join(s.runsDir(), runID.String()+".zip")
}

func (s *FileSnapshot) Save(_ context.Context, runID uuid.UUID, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeAtomic(s.runPath(runID), data); err != nil {
		return fmt.Errorf("saving run snapshot: %w", err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("saving latest snapshot: %w", err)
	}
	s.prune()
	return nil
}

// prune removes per-run copies past retention. Failures only cost disk
// space, so they are logged and otherwise ignored.
func (s *FileSnapshot) prune() {
	if s.retention <= 0 {
		return
	}
	entries, err := os.ReadDir(s.runsDir())
	if err != nil {
		slog.Warn("listing run snapshots", "error", err)
		return
	}
	cutoff := s.now().Add(-s.retention)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".zip" {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.runsDir(), e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("removing expired run snapshot", "file", e.Name(), "error", err)
		}
	}
}

func (s *FileSnapshot) Latest(_ context.Context) ([]byte, error) {
	return readSnapshot(s.path)
}

func (s *FileSnapshot) Load(_ context.Context, runID uuid.UUID) ([]byte, error) {
	path := s.runPath(runID)
	if s.retention > 0 {
		info, err := os.Stat(path)
		if err == nil && info.ModTime().Before(s.now().Add(-s.retention)) {
			return nil, ErrArchiveNotFound
		}
	}
	return readSnapshot(path)
}

func readSnapshot(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrArchiveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return data, nil
}

// writeAtomic writes data to a temp file in the target directory and renames
// it into place, so readers never observe a partial archive.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// RedisSnapshot stores archives in the shared cache with a TTL.
type RedisSnapshot struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewRedisSnapshot(c cache.Cache, ttl time.Duration) *RedisSnapshot {
	return &RedisSnapshot{cache: c, ttl: ttl}
}

func (s *RedisSnapshot) Save(ctx context.Context, runID uuid.UUID, data []byte) error {
	if err := s.cache.Set(ctx, cache.ArchiveRunKey(runID), data, s.ttl); err != nil {
		return fmt.Errorf("saving run snapshot: %w", err)
	}
	if err := s.cache.Set(ctx, cache.ArchiveLatestKey(), data, s.ttl); err != nil {
		return fmt.Errorf("saving latest snapshot: %w", err)
	}
	return nil
}

func (s *RedisSnapshot) Latest(ctx context.Context) ([]byte, error) {
	return s.get(ctx, cache.ArchiveLatestKey())
}

func (s *RedisSnapshot) Load(ctx context.Context, runID uuid.UUID) ([]byte, error) {
	return s.get(ctx, cache.ArchiveRunKey(runID))
}

func (s *RedisSnapshot) get(ctx context.Context, key string) ([]byte, error) {
	data, found, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if !found {
		return nil, ErrArchiveNotFound
	}
	return data, nil
}

var (
	_ Snapshotter = (*FileSnapshot)(nil)
	_ Snapshotter = (*RedisSnapshot)(nil)
)
