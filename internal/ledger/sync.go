package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/soundcheck/internal/common"
	"github.com/verte-zerg/soundcheck/internal/model"
)

// Saver persists ledger snapshots for a user.
type Saver interface {
	SaveLedger(ctx context.Context, user string, snap model.LedgerSnapshot) error
}

// Loader reads a persisted ledger snapshot for a user.
type Loader interface {
	LoadLedger(ctx context.Context, user string) (model.LedgerSnapshot, bool, error)
}

// Load returns the persisted ledger for user, or an empty one when none exists.
// On storage failure it still returns a usable empty ledger alongside the error.
func Load(ctx context.Context, loader Loader, user string, opts ...Option) (*Ledger, error) {
	l := New(opts...)
	snap, found, err := loader.LoadLedger(ctx, user)
	if err != nil {
		return l, fmt.Errorf("%w: load ledger: %w", common.ErrStorageUnavailable, err)
	}
	if !found {
		return l, nil
	}
	if err := l.Restore(snap); err != nil {
		return New(opts...), err
	}
	return l, nil
}

// Syncer persists the newest ledger snapshot in the background.
// Saves are ordered by ledger version, so an older snapshot never replaces a newer one.
type Syncer struct {
	ledger *Ledger
	saver  Saver
	user   string
	retry  common.RetryOptions
	logger *slog.Logger

	kick chan struct{}
	stop chan struct{}
	done chan struct{}

	// flushMu serializes saves and the post-failure merge.
	flushMu sync.Mutex
	// loader is set while the stored ledger has not been read yet. Guarded by flushMu.
	loader Loader

	mu      sync.Mutex
	saved   int64
	lastErr error

	closeOnce sync.Once
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithRetryOptions overrides the save retry policy.
func WithRetryOptions(opts common.RetryOptions) SyncerOption {
	return func(s *Syncer) {
		s.retry = opts
	}
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) SyncerOption {
	return func(s *Syncer) {
		s.logger = logger
	}
}

// WithUnconfirmedLoad marks the ledger as started after a failed load.
// Before the first save the syncer reads the stored snapshot again and merges
// it into the ledger; while that read keeps failing nothing is written.
func WithUnconfirmedLoad(loader Loader) SyncerOption {
	return func(s *Syncer) {
		s.loader = loader
	}
}

// NewSyncer starts a background saver for l.
func NewSyncer(l *Ledger, saver Saver, user string, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		ledger: l,
		saver:  saver,
		user:   user,
		retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     time.Second,
		},
		logger: slog.Default(),
		kick:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		saved:  l.Version(),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// Notify schedules a save of the newest snapshot. It never blocks.
func (s *Syncer) Notify() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// SavedVersion returns the newest ledger version known to be persisted.
func (s *Syncer) SavedVersion() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// LastError returns the most recent save failure, cleared by a later success.
func (s *Syncer) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close stops the background loop and flushes any pending snapshot.
func (s *Syncer) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.Flush(ctx)
}

// Flush saves the newest snapshot if it has not been saved yet.
func (s *Syncer) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	snap := s.ledger.Snapshot()

	s.mu.Lock()
	if snap.Version <= s.saved {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	merged, err := s.confirmLoad(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Warn("stored ledger still unreadable, not saving",
			"user", s.user,
			"version", snap.Version,
			"error", err)
		return err
	}
	if merged {
		snap = s.ledger.Snapshot()
	}

	err = common.WithRetry(ctx, func() error {
		if err := s.saver.SaveLedger(ctx, s.user, snap); err != nil {
			return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
		}
		return nil
	}, s.retry)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		s.logger.Warn("ledger save failed, keeping local state",
			"user", s.user,
			"version", snap.Version,
			"error", err)
		return err
	}
	if snap.Version > s.saved {
		s.saved = snap.Version
	}
	s.lastErr = nil
	s.logger.Debug("ledger saved", "user", s.user, "version", snap.Version)
	return nil
}

// confirmLoad reads the stored snapshot once after a failed load and merges it.
func (s *Syncer) confirmLoad(ctx context.Context) (bool, error) {
	if s.loader == nil {
		return false, nil
	}

	var (
		stored model.LedgerSnapshot
		found  bool
	)
	err := common.WithRetry(ctx, func() error {
		var err error
		stored, found, err = s.loader.LoadLedger(ctx, s.user)
		if err != nil {
			return fmt.Errorf("%w: load ledger: %w", common.ErrStorageUnavailable, err)
		}
		return nil
	}, s.retry)
	if err != nil {
		return false, err
	}
	if found {
		if err := s.ledger.Merge(stored); err != nil {
			return false, err
		}
		s.logger.Info("merged stored ledger", "user", s.user, "version", stored.Version)
	}

	s.loader = nil
	return found, nil
}

func (s *Syncer) run() {
	defer close(s.done)
	ctx := context.Background()
	for {
		select {
		case <-s.kick:
			_ = s.Flush(ctx)
		case <-s.stop:
			return
		}
	}
}
