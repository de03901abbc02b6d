// Package ledger records per-item practice accuracy.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/soundcheck/internal/common"
	"github.com/verte-zerg/soundcheck/internal/model"
)

type table struct {
	order   []string
	records map[string]*model.AccuracyRecord
}

func newTable() *table {
	return &table{records: map[string]*model.AccuracyRecord{}}
}

// Ledger is the single owner of accuracy state.
type Ledger struct {
	mu sync.Mutex

	tables        map[model.Kind]*table
	totalAttempts int
	totalCorrect  int
	history       []model.SessionEntry
	startDate     time.Time
	version       int64

	now   func() time.Time
	newID func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) {
		l.newID = newID
	}
}

// New returns an empty ledger with StartDate set to now.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.clear()
	return l
}

func (l *Ledger) clear() {
	l.tables = map[model.Kind]*table{}
	for _, k := range model.Kinds {
		l.tables[k] = newTable()
	}
	l.totalAttempts = 0
	l.totalCorrect = 0
	l.history = nil
	l.startDate = l.now()
}

// RecordAttempt counts one attempt on an item and merges its metadata.
func (l *Ledger) RecordAttempt(kind model.Kind, key string, correct bool, meta model.Metadata) (model.AccuracyRecord, error) {
	item := model.TrackedItem{Kind: kind, Key: key}
	if err := item.Validate(); err != nil {
		return model.AccuracyRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.tables[kind]
	rec, ok := t.records[key]
	if !ok {
		rec = &model.AccuracyRecord{}
		t.records[key] = rec
		t.order = append(t.order, key)
	}
	rec.Total++
	if correct {
		rec.Correct++
	}
	ts := l.now()
	rec.LastAttempt = &ts
	rec.Metadata = rec.Metadata.Merge(meta)

	l.totalAttempts++
	if correct {
		l.totalCorrect++
	}
	l.version++
	return rec.Clone(), nil
}

// Record returns the record for an item, if any.
func (l *Ledger) Record(kind model.Kind, key string) (model.AccuracyRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.tables[kind]
	if !ok {
		return model.AccuracyRecord{}, false
	}
	rec, ok := t.records[key]
	if !ok {
		return model.AccuracyRecord{}, false
	}
	return rec.Clone(), true
}

// RecordSession appends a completed session to the history.
func (l *Ledger) RecordSession(mode model.Mode, stats model.SessionStats) (model.SessionEntry, error) {
	if mode == "" {
		return model.SessionEntry{}, common.InvalidArgumentf("session mode is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := model.SessionEntry{
		ID:        l.newID(),
		Mode:      mode,
		Timestamp: l.now(),
		Stats:     stats,
	}
	l.history = append(l.history, entry)
	l.version++
	return entry, nil
}

// Reset reinitializes all mappings and counters with a fresh start date.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clear()
	l.version++
}

// Version increases on every mutation.
func (l *Ledger) Version() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// Snapshot returns a deep copy of the ledger state.
func (l *Ledger) Snapshot() model.LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := model.LedgerSnapshot{
		Items:         make(map[model.Kind][]model.ItemEntry, len(l.tables)),
		TotalAttempts: l.totalAttempts,
		TotalCorrect:  l.totalCorrect,
		StartDate:     l.startDate,
		Version:       l.version,
	}
	for kind, t := range l.tables {
		entries := make([]model.ItemEntry, 0, len(t.order))
		for _, key := range t.order {
			entries = append(entries, model.ItemEntry{Key: key, Record: t.records[key].Clone()})
		}
		snap.Items[kind] = entries
	}
	if len(l.history) > 0 {
		snap.SessionHistory = append([]model.SessionEntry(nil), l.history...)
	}
	return snap
}

// Restore replaces ledger state with a persisted snapshot.
func (l *Ledger) Restore(snap model.LedgerSnapshot) error {
	tables := map[model.Kind]*table{}
	for _, k := range model.Kinds {
		tables[k] = newTable()
	}
	for kind, entries := range snap.Items {
		t, ok := tables[kind]
		if !ok {
			return common.InvalidArgumentf("unknown item kind %q in snapshot", kind)
		}
		for _, entry := range entries {
			if entry.Record.Correct > entry.Record.Total || entry.Record.Correct < 0 {
				return common.InvalidArgumentf("record %s/%s has correct=%d total=%d", kind, entry.Key, entry.Record.Correct, entry.Record.Total)
			}
			if _, dup := t.records[entry.Key]; dup {
				continue
			}
			rec := entry.Record.Clone()
			t.records[entry.Key] = &rec
			t.order = append(t.order, entry.Key)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.tables = tables
	l.totalAttempts = snap.TotalAttempts
	l.totalCorrect = snap.TotalCorrect
	l.history = append([]model.SessionEntry(nil), snap.SessionHistory...)
	if !snap.StartDate.IsZero() {
		l.startDate = snap.StartDate
	}
	l.version = snap.Version
	return nil
}

// Merge folds a persisted snapshot under the current state. Stored records
// come first in table order, counts add up, and the stored history precedes
// sessions recorded locally. The version ends above snap.Version so the merged
// state replaces the stored one on the next save.
func (l *Ledger) Merge(snap model.LedgerSnapshot) error {
	stored := New(WithClock(l.now))
	if err := stored.Restore(snap); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, kind := range model.Kinds {
		local := l.tables[kind]
		merged := stored.tables[kind]
		for _, key := range local.order {
			rec := local.records[key]
			base, ok := merged.records[key]
			if !ok {
				clone := rec.Clone()
				merged.records[key] = &clone
				merged.order = append(merged.order, key)
				continue
			}
			base.Correct += rec.Correct
			base.Total += rec.Total
			if rec.LastAttempt != nil && (base.LastAttempt == nil || rec.LastAttempt.After(*base.LastAttempt)) {
				ts := *rec.LastAttempt
				base.LastAttempt = &ts
			}
			base.Metadata = base.Metadata.Merge(rec.Metadata)
		}
		l.tables[kind] = merged
	}
	l.totalAttempts += stored.totalAttempts
	l.totalCorrect += stored.totalCorrect
	l.history = append(stored.history, l.history...)
	if stored.startDate.Before(l.startDate) {
		l.startDate = stored.startDate
	}
	l.version += snap.Version
	return nil
}
