// Package ratelimit bounds contact-form submission frequency per source
// address with a sliding window persisted to a local SQLite file.
//
// This is a best-effort throttle for the self-hosted dispatch path. It is
// not safe against distributed or spoofed source addresses and offers no
// cross-process consistency; treat it as a nuisance filter, not a security
// control.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// DefaultWindow and DefaultLimit mirror the throttle the contact form
	// has always had: five submissions per five minutes per address.
	DefaultWindow = 5 * time.Minute
	DefaultLimit  = 5
)

// Store counts submission attempts per hashed source address.
type Store struct {
	db     *sql.DB
	window time.Duration
	limit  int
}

// Open creates or opens the attempt store at path. The directory is created
// if missing.
func Open(path string, window time.Duration, limit int) (*Store, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating attempt store directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening attempt store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to attempt store: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS submission_attempts (
			source_key   TEXT    NOT NULL,
			attempted_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_attempts_source_time
			ON submission_attempts(source_key, attempted_at);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating attempt table: %w", err)
	}

	return &Store{db: db, window: window, limit: limit}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the attempt store is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Allow records an attempt from source at now and reports whether it stays
// within the ceiling. Entries older than the window are pruned on each
// check. The attempt is recorded even when rejected.
func (s *Store) Allow(ctx context.Context, source string, now time.Time) (bool, error) {
	key := sourceKey(source)
	cutoff := now.Add(-s.window).Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("starting attempt transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM submission_attempts WHERE source_key = ? AND attempted_at < ?`,
		key, cutoff,
	); err != nil {
		return false, fmt.Errorf("pruning attempts: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO submission_attempts (source_key, attempted_at) VALUES (?, ?)`,
		key, now.Unix(),
	); err != nil {
		return false, fmt.Errorf("recording attempt: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submission_attempts WHERE source_key = ? AND attempted_at >= ?`,
		key, cutoff,
	).Scan(&count); err != nil {
		return false, fmt.Errorf("counting attempts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing attempt: %w", err)
	}

	return count <= s.limit, nil
}

// sourceKey hashes the client address so raw IPs never sit on disk.
func sourceKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:16])
}
