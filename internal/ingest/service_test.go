package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dkarpov/takeout-ingest/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	created   []*store.Record
	createErr error
	// keys already present; Create returns ErrDuplicateEvent for these.
	existing map[string]bool
}

func (f *fakeRepo) Create(_ context.Context, record *store.Record) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.existing[record.Kind+"/"+record.EventKey] {
		return store.ErrDuplicateEvent
	}
	f.created = append(f.created, record)
	return nil
}

func (f *fakeRepo) CountByKind(context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, r := range f.created {
		counts[r.Kind]++
	}
	return counts, nil
}

type fakePublisher struct {
	keys    []string
	sendErr error
}

func (f *fakePublisher) SendMessage(_ context.Context, key string, _ any) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.keys = append(f.keys, key)
	return nil
}

// writeTakeout lays out a minimal unpacked archive: three browser visits, one
// of them a repeat and one record broken.
func writeTakeout(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "Chrome")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BrowserHistory.json"), []byte(`{
		"Browser History": [
			{"title": "a", "url": "https://a.example", "time_usec": 1617404690000000},
			{"title": "a again", "url": "https://a.example", "time_usec": 1617404690000000},
			{"title": "broken", "url": "https://b.example"},
			{"title": "c", "url": "https://c.example", "time_usec": 1617404691000000}
		]
	}`), 0o644))
	return root
}

func TestServiceRun(t *testing.T) {
	repo := &fakeRepo{}
	publisher := &fakePublisher{}
	svc := NewService(repo, publisher, zap.NewNop())

	summary, err := svc.Run(context.Background(), writeTakeout(t))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Files)
	assert.Equal(t, 3, summary.Events)
	assert.Equal(t, 1, summary.RecordErrors)
	assert.Equal(t, 2, summary.Stored) // the repeat was merged away
	assert.Equal(t, 0, summary.Duplicates)

	require.Len(t, repo.created, 2)
	assert.Equal(t, repo.created[0].EventKey, publisher.keys[0])
	assert.Equal(t, "browser_history", repo.created[0].Kind)
	assert.Equal(t, map[string]int64{"browser_history": 2}, summary.TotalsByKind)
}

func TestServiceRunCountsStoreDuplicates(t *testing.T) {
	repo := &fakeRepo{existing: map[string]bool{
		"browser_history/https://a.example|1617404690": true,
	}}
	publisher := &fakePublisher{}
	svc := NewService(repo, publisher, zap.NewNop())

	summary, err := svc.Run(context.Background(), writeTakeout(t))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Stored)
	assert.Equal(t, 1, summary.Duplicates)
	// Already-stored events are not republished.
	assert.Len(t, publisher.keys, 1)
}

func TestServiceRunPublishFailureNotFatal(t *testing.T) {
	repo := &fakeRepo{}
	publisher := &fakePublisher{sendErr: errors.New("broker down")}
	svc := NewService(repo, publisher, zap.NewNop())

	summary, err := svc.Run(context.Background(), writeTakeout(t))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Stored)
	assert.Len(t, repo.created, 2)
}

func TestServiceRunStoreFailureFatal(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("connection refused")}
	svc := NewService(repo, &fakePublisher{}, zap.NewNop())

	_, err := svc.Run(context.Background(), writeTakeout(t))
	assert.ErrorContains(t, err, "failed to store event")
}

func TestServiceRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(&fakeRepo{}, &fakePublisher{}, zap.NewNop())
	_, err := svc.Run(ctx, writeTakeout(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServiceRunMissingRoot(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakePublisher{}, zap.NewNop())
	_, err := svc.Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "failed to scan")
}
