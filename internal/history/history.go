// Package history persists how long full highlight passes took per file, so
// the adaptive delay starts from a realistic value after a restart.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/hues/internal/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS pass_timings (
	file_name   TEXT PRIMARY KEY,
	duration_us INTEGER NOT NULL,
	passes      INTEGER NOT NULL DEFAULT 1,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// ErrNotFound is returned by Last when a file has no recorded pass.
var ErrNotFound = errors.New("no recorded pass")

// Store is a sqlite backed timing history.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the history database at path. ":memory:" keeps the
// history in process.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
		dsn = "file:" + path
	}

	log.Debug(log.CatDB, "Opening history", "path", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to open history", err, "path", path)
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		log.ErrorErr(log.CatDB, "Failed to create history schema", err, "path", path)
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores the duration of the latest full pass over fileName.
func (s *Store) Record(ctx context.Context, fileName string, d time.Duration) error {
	if fileName == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pass_timings (file_name, duration_us, passes, updated_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(file_name) DO UPDATE SET
			duration_us = excluded.duration_us,
			passes = passes + 1,
			updated_at = CURRENT_TIMESTAMP`,
		fileName, d.Microseconds())
	if err != nil {
		return fmt.Errorf("recording pass for %s: %w", fileName, err)
	}
	return nil
}

// Last returns the most recent full pass duration for fileName.
func (s *Store) Last(ctx context.Context, fileName string) (time.Duration, error) {
	var us int64
	err := s.db.QueryRowContext(ctx,
		`SELECT duration_us FROM pass_timings WHERE file_name = ?`, fileName).Scan(&us)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("reading pass for %s: %w", fileName, err)
	}
	return time.Duration(us) * time.Microsecond, nil
}

// Passes returns how many full passes were recorded for fileName.
func (s *Store) Passes(ctx context.Context, fileName string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT passes FROM pass_timings WHERE file_name = ?`, fileName).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading pass count for %s: %w", fileName, err)
	}
	return n, nil
}

// Forget removes the history of fileName.
func (s *Store) Forget(ctx context.Context, fileName string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pass_timings WHERE file_name = ?`, fileName); err != nil {
		return fmt.Errorf("forgetting %s: %w", fileName, err)
	}
	return nil
}
