package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/soundcheck/internal/common"
	"github.com/verte-zerg/soundcheck/internal/model"
)

type memoryStore struct {
	mu    sync.Mutex
	snaps map[string]model.LedgerSnapshot
	fail  bool
	// failLoad breaks reads only.
	failLoad bool
	saves    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{snaps: map[string]model.LedgerSnapshot{}}
}

func (m *memoryStore) SaveLedger(_ context.Context, user string, snap model.LedgerSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.fail {
		return errors.New("disk full")
	}
	if cur, ok := m.snaps[user]; ok && cur.Version >= snap.Version {
		return nil
	}
	m.snaps[user] = snap
	return nil
}

func (m *memoryStore) LoadLedger(_ context.Context, user string) (model.LedgerSnapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail || m.failLoad {
		return model.LedgerSnapshot{}, false, errors.New("disk unreadable")
	}
	snap, ok := m.snaps[user]
	return snap, ok, nil
}

func (m *memoryStore) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *memoryStore) setFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

func (m *memoryStore) stored(user string) (model.LedgerSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[user]
	return snap, ok
}

func quietSyncer(l *Ledger, saver Saver, opts ...SyncerOption) *Syncer {
	opts = append([]SyncerOption{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRetryOptions(common.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}),
	}, opts...)
	return NewSyncer(l, saver, "tester", opts...)
}

func TestSyncerPersistsNewestSnapshot(t *testing.T) {
	store := newMemoryStore()
	l := New()
	s := quietSyncer(l, store)

	for i := 0; i < 10; i++ {
		_, err := l.RecordAttempt(model.KindWord, "cat", i%2 == 0, model.Metadata{})
		require.NoError(t, err)
		s.Notify()
	}
	require.NoError(t, s.Close(context.Background()))

	snap, ok := store.stored("tester")
	require.True(t, ok)
	assert.Equal(t, l.Version(), snap.Version)
	assert.Equal(t, 10, snap.TotalAttempts)
	assert.Equal(t, l.Version(), s.SavedVersion())
}

func TestSyncerSkipsAlreadySavedVersion(t *testing.T) {
	store := newMemoryStore()
	l := New()
	s := quietSyncer(l, store)
	_, err := l.RecordAttempt(model.KindWord, "dog", true, model.Metadata{})
	require.NoError(t, err)

	require.NoError(t, s.Flush(context.Background()))
	require.NoError(t, s.Flush(context.Background()))
	require.NoError(t, s.Close(context.Background()))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 1, store.saves)
}

func TestSyncerKeepsLocalStateOnFailure(t *testing.T) {
	store := newMemoryStore()
	store.setFail(true)
	l := New()
	s := quietSyncer(l, store)

	_, err := l.RecordAttempt(model.KindSound, "/b/", false, model.Metadata{})
	require.NoError(t, err)

	err = s.Flush(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
	assert.ErrorIs(t, s.LastError(), common.ErrStorageUnavailable)

	rec, ok := l.Record(model.KindSound, "/b/")
	require.True(t, ok)
	assert.Equal(t, 1, rec.Total)

	store.setFail(false)
	require.NoError(t, s.Close(context.Background()))
	assert.NoError(t, s.LastError())

	snap, ok := store.stored("tester")
	require.True(t, ok)
	assert.Equal(t, 1, snap.TotalAttempts)
}

func TestStaleSnapshotNeverOverwritesNewer(t *testing.T) {
	store := newMemoryStore()
	l := New()
	_, err := l.RecordAttempt(model.KindWord, "sun", true, model.Metadata{})
	require.NoError(t, err)
	older := l.Snapshot()
	_, err = l.RecordAttempt(model.KindWord, "sun", true, model.Metadata{})
	require.NoError(t, err)
	newer := l.Snapshot()

	ctx := context.Background()
	require.NoError(t, store.SaveLedger(ctx, "tester", newer))
	require.NoError(t, store.SaveLedger(ctx, "tester", older))

	snap, ok := store.stored("tester")
	require.True(t, ok)
	assert.Equal(t, newer.Version, snap.Version)
	assert.Equal(t, 2, snap.TotalAttempts)
}

func TestLoadRestoresOrFallsBack(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()

	l, err := Load(ctx, store, "tester")
	require.NoError(t, err)
	assert.Equal(t, int64(0), l.Version())

	_, err = l.RecordAttempt(model.KindPair, "bat-pat", true, model.Metadata{})
	require.NoError(t, err)
	require.NoError(t, store.SaveLedger(ctx, "tester", l.Snapshot()))

	loaded, err := Load(ctx, store, "tester")
	require.NoError(t, err)
	rec, ok := loaded.Record(model.KindPair, "bat-pat")
	require.True(t, ok)
	assert.Equal(t, 1, rec.Correct)

	before, ok := store.stored("tester")
	require.True(t, ok)

	store.setFailLoad(true)
	fallback, err := Load(ctx, store, "tester")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
	require.NotNil(t, fallback)
	assert.Equal(t, 0, fallback.Snapshot().TotalAttempts)

	s := quietSyncer(fallback, store, WithUnconfirmedLoad(store))
	for range 3 {
		_, err := fallback.RecordAttempt(model.KindPair, "ship-sip", false, model.Metadata{})
		require.NoError(t, err)
		s.Notify()
	}
	err = s.Close(ctx)
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)

	after, ok := store.stored("tester")
	require.True(t, ok)
	assert.Equal(t, before, after)
}

// storedHistory saves a ledger at version 4 with three sound attempts and one session.
func storedHistory(t *testing.T, store *memoryStore) model.LedgerSnapshot {
	t.Helper()
	l := New()
	for i := range 3 {
		_, err := l.RecordAttempt(model.KindSound, "/θ/", i > 0, model.Metadata{})
		require.NoError(t, err)
	}
	_, err := l.RecordSession(model.ModeSounds, model.SessionStats{Attempts: 3, Correct: 2})
	require.NoError(t, err)
	snap := l.Snapshot()
	require.Equal(t, int64(4), snap.Version)
	require.NoError(t, store.SaveLedger(context.Background(), "tester", snap))
	return snap
}

func TestFailedLoadNeverOverwritesStoredHistory(t *testing.T) {
	store := newMemoryStore()
	before := storedHistory(t, store)
	ctx := context.Background()

	store.setFailLoad(true)
	l, err := Load(ctx, store, "tester")
	require.ErrorIs(t, err, common.ErrStorageUnavailable)

	s := quietSyncer(l, store, WithUnconfirmedLoad(store))
	for range 5 {
		_, err := l.RecordAttempt(model.KindWord, "cat", true, model.Metadata{})
		require.NoError(t, err)
		s.Notify()
	}
	require.Error(t, s.Close(ctx))

	after, ok := store.stored("tester")
	require.True(t, ok)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, 3, after.TotalAttempts)
	assert.Len(t, after.SessionHistory, 1)
	assert.Len(t, after.Items[model.KindSound], 1)
	assert.Empty(t, after.Items[model.KindWord])
}

func TestFailedLoadMergesOnceStoreRecovers(t *testing.T) {
	store := newMemoryStore()
	storedHistory(t, store)
	ctx := context.Background()

	store.setFailLoad(true)
	l, err := Load(ctx, store, "tester")
	require.ErrorIs(t, err, common.ErrStorageUnavailable)

	s := quietSyncer(l, store, WithUnconfirmedLoad(store))
	for i := range 2 {
		_, err := l.RecordAttempt(model.KindSound, "/θ/", i == 0, model.Metadata{})
		require.NoError(t, err)
	}
	_, err = l.RecordAttempt(model.KindWord, "cat", true, model.Metadata{})
	require.NoError(t, err)
	require.Error(t, s.Flush(ctx))

	store.setFailLoad(false)
	require.NoError(t, s.Close(ctx))

	after, ok := store.stored("tester")
	require.True(t, ok)
	assert.Greater(t, after.Version, int64(4))
	assert.Equal(t, 6, after.TotalAttempts)
	assert.Equal(t, 4, after.TotalCorrect)
	assert.Len(t, after.SessionHistory, 1)

	rec, ok := after.Find(model.KindSound, "/θ/")
	require.True(t, ok)
	assert.Equal(t, 5, rec.Total)
	assert.Equal(t, 3, rec.Correct)
	_, ok = after.Find(model.KindWord, "cat")
	assert.True(t, ok)
}
