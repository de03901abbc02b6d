package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/soundcheck/internal/ledger"
	"github.com/verte-zerg/soundcheck/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "soundcheck.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func sampleLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	start := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	tick := start
	l := ledger.New(
		ledger.WithClock(func() time.Time {
			tick = tick.Add(time.Minute)
			return tick
		}),
		ledger.WithIDGenerator(func() string { return "s-1" }),
	)
	pos := 1
	steps := []struct {
		kind    model.Kind
		key     string
		correct bool
		meta    model.Metadata
	}{
		{model.KindPair, "thin-fin", false, model.Metadata{DifficultySound: "/θ/", SpeechMode: "normal", PlayedWord: "thin"}},
		{model.KindSound, "/θ/", false, model.Metadata{Pair: []string{"thin", "fin"}}},
		{model.KindWord, "cat", true, model.Metadata{Mode: model.ModeSounds, SoundCount: 3, UserCount: 3}},
		{model.KindSound, "/æ/", true, model.Metadata{Word: "cat", Position: &pos}},
	}
	for _, s := range steps {
		if _, err := l.RecordAttempt(s.kind, s.key, s.correct, s.meta); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}
	if _, err := l.RecordSession(model.ModePairs, model.SessionStats{Score: 20, Attempts: 4, Correct: 2, BestStreak: 2, DurationMs: 90000}); err != nil {
		t.Fatalf("record session: %v", err)
	}
	return l
}

func TestLoadMissingLedger(t *testing.T) {
	st := openTestStore(t)
	_, found, err := st.LoadLedger(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	snap := sampleLedger(t).Snapshot()

	require.NoError(t, st.SaveLedger(ctx, "ana", snap))

	got, found, err := st.LoadLedger(ctx, "ana")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, snap.Version, got.Version)
	assert.Equal(t, snap.TotalAttempts, got.TotalAttempts)
	assert.Equal(t, snap.TotalCorrect, got.TotalCorrect)
	assert.True(t, snap.StartDate.Equal(got.StartDate))

	for _, kind := range model.Kinds {
		require.Len(t, got.Items[kind], len(snap.Items[kind]), "kind %s", kind)
		for i, want := range snap.Items[kind] {
			entry := got.Items[kind][i]
			assert.Equal(t, want.Key, entry.Key)
			assert.Equal(t, want.Record.Correct, entry.Record.Correct)
			assert.Equal(t, want.Record.Total, entry.Record.Total)
			assert.Equal(t, want.Record.Metadata, entry.Record.Metadata)
			require.NotNil(t, entry.Record.LastAttempt)
			assert.True(t, want.Record.LastAttempt.Equal(*entry.Record.LastAttempt))
		}
	}

	require.Len(t, got.SessionHistory, 1)
	assert.Equal(t, "s-1", got.SessionHistory[0].ID)
	assert.Equal(t, model.ModePairs, got.SessionHistory[0].Mode)
	assert.Equal(t, snap.SessionHistory[0].Stats, got.SessionHistory[0].Stats)

	restored := ledger.New()
	require.NoError(t, restored.Restore(got))
	rec, ok := restored.Record(model.KindPair, "thin-fin")
	require.True(t, ok)
	assert.Equal(t, "/θ/", rec.Metadata.DifficultySound)
}

func TestSaveIgnoresStaleVersion(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	l := sampleLedger(t)
	older := l.Snapshot()
	if _, err := l.RecordAttempt(model.KindWord, "dog", true, model.Metadata{}); err != nil {
		t.Fatalf("record attempt: %v", err)
	}
	newer := l.Snapshot()

	require.NoError(t, st.SaveLedger(ctx, "ana", newer))
	require.NoError(t, st.SaveLedger(ctx, "ana", older))

	got, found, err := st.LoadLedger(ctx, "ana")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, newer.Version, got.Version)
	_, ok := got.Find(model.KindWord, "dog")
	assert.True(t, ok)
}

func TestUsersAreIsolated(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.SaveLedger(ctx, "ana", sampleLedger(t).Snapshot()))

	other := ledger.New()
	if _, err := other.RecordAttempt(model.KindWord, "sun", false, model.Metadata{}); err != nil {
		t.Fatalf("record attempt: %v", err)
	}
	require.NoError(t, st.SaveLedger(ctx, "ben", other.Snapshot()))

	ana, _, err := st.LoadLedger(ctx, "ana")
	require.NoError(t, err)
	ben, _, err := st.LoadLedger(ctx, "ben")
	require.NoError(t, err)
	assert.Equal(t, 4, ana.TotalAttempts)
	assert.Equal(t, 1, ben.TotalAttempts)
	assert.Len(t, ben.Items[model.KindWord], 1)
	assert.Empty(t, ben.SessionHistory)
}

func TestResetPersistsEmptyLedger(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	l := sampleLedger(t)
	require.NoError(t, st.SaveLedger(ctx, "ana", l.Snapshot()))

	l.Reset()
	require.NoError(t, st.SaveLedger(ctx, "ana", l.Snapshot()))

	got, found, err := st.LoadLedger(ctx, "ana")
	require.NoError(t, err)
	require.True(t, found)
	assert.Zero(t, got.TotalAttempts)
	for _, kind := range model.Kinds {
		assert.Empty(t, got.Items[kind])
	}
	assert.Empty(t, got.SessionHistory)
}
