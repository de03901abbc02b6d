// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/soundcheck/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for ledger data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ledgers (
			user_key TEXT PRIMARY KEY,
			start_date TEXT NOT NULL,
			total_attempts INTEGER NOT NULL,
			total_correct INTEGER NOT NULL,
			version INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS item_records (
			user_key TEXT NOT NULL,
			kind TEXT NOT NULL,
			item_key TEXT NOT NULL,
			ord INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL,
			last_attempt TEXT,
			metadata TEXT NOT NULL,
			PRIMARY KEY (user_key, kind, item_key)
		);`,
		`CREATE TABLE IF NOT EXISTS session_history (
			user_key TEXT NOT NULL,
			ord INTEGER NOT NULL,
			session_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			stats TEXT NOT NULL,
			PRIMARY KEY (user_key, ord)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_item_records_user_kind ON item_records(user_key, kind, ord);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveLedger replaces the stored ledger for user with snap.
// A snapshot whose version is not newer than the stored one is ignored.
func (s *Store) SaveLedger(ctx context.Context, user string, snap model.LedgerSnapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var stored int64
	err = tx.QueryRowContext(ctx, `SELECT version FROM ledgers WHERE user_key = ?`, user).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	case err != nil:
		return err
	case stored >= snap.Version:
		return tx.Rollback()
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO ledgers (user_key, start_date, total_attempts, total_correct, version, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_key) DO UPDATE SET
			start_date = excluded.start_date,
			total_attempts = excluded.total_attempts,
			total_correct = excluded.total_correct,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		user,
		formatTime(snap.StartDate),
		snap.TotalAttempts,
		snap.TotalCorrect,
		snap.Version,
		formatTime(time.Now()),
	); err != nil {
		return err
	}

	if err = s.replaceItems(ctx, tx, user, snap.Items); err != nil {
		return err
	}
	if err = s.replaceSessions(ctx, tx, user, snap.SessionHistory); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) replaceItems(ctx context.Context, tx *sql.Tx, user string, items map[model.Kind][]model.ItemEntry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM item_records WHERE user_key = ?`, user); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO item_records (user_key, kind, item_key, ord, correct, total, last_attempt, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, kind := range model.Kinds {
		for i, entry := range items[kind] {
			meta, err := json.Marshal(entry.Record.Metadata)
			if err != nil {
				return fmt.Errorf("failed to encode metadata for %s %q: %w", kind, entry.Key, err)
			}
			var last any
			if entry.Record.LastAttempt != nil {
				last = formatTime(*entry.Record.LastAttempt)
			}
			if _, err := stmt.ExecContext(ctx, user, string(kind), entry.Key, i,
				entry.Record.Correct, entry.Record.Total, last, string(meta)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) replaceSessions(ctx context.Context, tx *sql.Tx, user string, history []model.SessionEntry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM session_history WHERE user_key = ?`, user); err != nil {
		return err
	}
	for i, entry := range history {
		stats, err := json.Marshal(entry.Stats)
		if err != nil {
			return fmt.Errorf("failed to encode session stats: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_history (user_key, ord, session_id, mode, timestamp, stats)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			user, i, entry.ID, string(entry.Mode), formatTime(entry.Timestamp), string(stats),
		); err != nil {
			return err
		}
	}
	return nil
}

// LoadLedger reads the stored ledger for user. found is false when none exists.
func (s *Store) LoadLedger(ctx context.Context, user string) (snap model.LedgerSnapshot, found bool, err error) {
	var startDate string
	err = s.db.QueryRowContext(ctx,
		`SELECT start_date, total_attempts, total_correct, version FROM ledgers WHERE user_key = ?`, user,
	).Scan(&startDate, &snap.TotalAttempts, &snap.TotalCorrect, &snap.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LedgerSnapshot{}, false, nil
	}
	if err != nil {
		return model.LedgerSnapshot{}, false, err
	}
	if snap.StartDate, err = parseTime(startDate); err != nil {
		return model.LedgerSnapshot{}, false, err
	}

	if snap.Items, err = s.loadItems(ctx, user); err != nil {
		return model.LedgerSnapshot{}, false, err
	}
	if snap.SessionHistory, err = s.loadSessions(ctx, user); err != nil {
		return model.LedgerSnapshot{}, false, err
	}
	return snap, true, nil
}

func (s *Store) loadItems(ctx context.Context, user string) (map[model.Kind][]model.ItemEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, item_key, correct, total, last_attempt, metadata
		 FROM item_records WHERE user_key = ? ORDER BY kind, ord`, user)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	items := map[model.Kind][]model.ItemEntry{}
	for _, kind := range model.Kinds {
		items[kind] = []model.ItemEntry{}
	}
	for rows.Next() {
		var (
			kind  string
			entry model.ItemEntry
			last  sql.NullString
			meta  string
		)
		if err := rows.Scan(&kind, &entry.Key, &entry.Record.Correct, &entry.Record.Total, &last, &meta); err != nil {
			return nil, err
		}
		if last.Valid {
			ts, err := parseTime(last.String)
			if err != nil {
				return nil, err
			}
			entry.Record.LastAttempt = &ts
		}
		if err := json.Unmarshal([]byte(meta), &entry.Record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s %q: %w", kind, entry.Key, err)
		}
		items[model.Kind(kind)] = append(items[model.Kind(kind)], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) loadSessions(ctx context.Context, user string) ([]model.SessionEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, mode, timestamp, stats FROM session_history WHERE user_key = ? ORDER BY ord`, user)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var history []model.SessionEntry
	for rows.Next() {
		var (
			entry model.SessionEntry
			mode  string
			ts    string
			stats string
		)
		if err := rows.Scan(&entry.ID, &mode, &ts, &stats); err != nil {
			return nil, err
		}
		entry.Mode = model.Mode(mode)
		if entry.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(stats), &entry.Stats); err != nil {
			return nil, fmt.Errorf("failed to decode session stats: %w", err)
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}
