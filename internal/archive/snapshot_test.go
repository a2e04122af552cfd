package archive

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/hazardlens/internal/cache"
)

func TestFileSnapshot_SaveLatestLoad(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSnapshot(filepath.Join(dir, "results_bounding_boxes.zip"))
	ctx := context.Background()

	_, err := s.Latest(ctx)
	assert.ErrorIs(t, err, ErrArchiveNotFound)

	first, second := uuid.New(), uuid.New()
	require.NoError(t, s.Save(ctx, first, []byte("one")))
	require.NoError(t, s.Save(ctx, second, []byte("two")))

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), latest)

	old, err := s.Load(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), old)

	_, err = s.Load(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrArchiveNotFound)

	leftovers, err := filepath.Glob(filepath.Join(dir, ".snapshot-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileSnapshot_ConcurrentSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.zip")
	s := NewFileSnapshot(path)

	var wg sync.WaitGroup
	payloads := [][]byte{[]byte("aaaaaaaa"), []byte("bbbbbbbb"), []byte("cccccccc")}
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Save(context.Background(), uuid.New(), payloads[i%3]))
		}(i)
	}
	wg.Wait()

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, payloads, got)
}

func TestFileSnapshot_RetentionPrunesExpiredRuns(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSnapshot(filepath.Join(dir, "latest.zip"), WithRetention(24*time.Hour))
	ctx := context.Background()

	stale, fresh := uuid.New(), uuid.New()
	require.NoError(t, s.Save(ctx, stale, []byte("stale")))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(s.runPath(stale), old, old))

	// expired copies are hidden before they are pruned
	_, err := s.Load(ctx, stale)
	assert.ErrorIs(t, err, ErrArchiveNotFound)

	require.NoError(t, s.Save(ctx, fresh, []byte("fresh")))

	_, err = os.Stat(s.runPath(stale))
	assert.ErrorIs(t, err, os.ErrNotExist)

	got, err := s.Load(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), got)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), latest)
}

func TestFileSnapshot_NoRetentionKeepsEverything(t *testing.T) {
	s := NewFileSnapshot(filepath.Join(t.TempDir(), "latest.zip"))
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, s.Save(ctx, id, []byte("kept")))
	old := time.Now().Add(-365 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(s.runPath(id), old, old))
	require.NoError(t, s.Save(ctx, uuid.New(), []byte("next")))

	got, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("kept"), got)
}

func newRedisSnapshot(t *testing.T) (*RedisSnapshot, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return NewRedisSnapshot(rc, time.Hour), mr
}

func TestRedisSnapshot_SaveLatestLoad(t *testing.T) {
	s, mr := newRedisSnapshot(t)
	ctx := context.Background()

	_, err := s.Latest(ctx)
	assert.ErrorIs(t, err, ErrArchiveNotFound)

	runID := uuid.New()
	require.NoError(t, s.Save(ctx, runID, []byte("zip")))

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("zip"), latest)

	byRun, err := s.Load(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, []byte("zip"), byRun)

	assert.True(t, mr.Exists(cache.ArchiveRunKey(runID)))
	assert.Equal(t, time.Hour, mr.TTL(cache.ArchiveLatestKey()))
}

func TestRedisSnapshot_Expiry(t *testing.T) {
	s, mr := newRedisSnapshot(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, uuid.New(), []byte("zip")))
	mr.FastForward(2 * time.Hour)

	_, err := s.Latest(ctx)
	assert.ErrorIs(t, err, ErrArchiveNotFound)
}

func TestRedisSnapshot_BackendDown(t *testing.T) {
	s, mr := newRedisSnapshot(t)
	mr.Close()

	_, err := s.Latest(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrArchiveNotFound)
}
