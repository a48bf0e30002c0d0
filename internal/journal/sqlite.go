package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"morph-bang/internal/journal/migrations"
	"morph-bang/internal/morph"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal persists one row per handled command event.
type SQLiteJournal struct {
	db     *sql.DB
	path   string
	logger morph.Logger
}

// NewSQLiteJournal opens (creating if needed) the journal at path and brings its
// schema up to date. path can be a file path or ":memory:".
func NewSQLiteJournal(path string, logger morph.Logger) (*SQLiteJournal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}
	if err := migrations.CheckStatus(db); err != nil {
		db.Close()
		return nil, err
	}

	j := NewSQLiteJournalFromDB(db, logger)
	j.path = path
	return j, nil
}

// NewSQLiteJournalFromDB wraps an existing, already migrated connection.
func NewSQLiteJournalFromDB(db *sql.DB, logger morph.Logger) *SQLiteJournal {
	if logger == nil {
		logger = morph.NewNopLogger()
	}
	return &SQLiteJournal{db: db, logger: logger}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// The journal has a single writer, so the pool is limited to one connection;
// this also keeps a ":memory:" database alive across calls.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return db, nil
}

// Record implements morph.EventRecorder. Write failures are logged, never returned,
// so a broken journal cannot stall event handling.
func (j *SQLiteJournal) Record(ctx context.Context, rec morph.EventRecord) {
	if err := j.Insert(ctx, rec); err != nil {
		j.logger.Warn("journal write failed", "event", rec.ID, "error", err)
	}
}

// Insert stores rec.
func (j *SQLiteJournal) Insert(ctx context.Context, rec morph.EventRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (id, path, destination, target_ext, destructive, action, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Path, rec.Destination, rec.TargetExt, rec.Destructive,
		string(rec.Action), rec.Error, rec.StartedAt.UnixNano(), rec.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting event %s: %w", rec.ID, err)
	}
	return nil
}

// List returns up to limit events, newest first. A non-positive limit returns all.
func (j *SQLiteJournal) List(ctx context.Context, limit int) ([]morph.EventRecord, error) {
	return j.query(ctx, `
		SELECT id, path, destination, target_ext, destructive, action, error, started_at, finished_at
		FROM events
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, normalizeLimit(limit))
}

// ListForDestination returns up to limit events for one destination path, newest first.
func (j *SQLiteJournal) ListForDestination(ctx context.Context, destination string, limit int) ([]morph.EventRecord, error) {
	return j.query(ctx, `
		SELECT id, path, destination, target_ext, destructive, action, error, started_at, finished_at
		FROM events
		WHERE destination = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, destination, normalizeLimit(limit))
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func (j *SQLiteJournal) query(ctx context.Context, q string, args ...any) ([]morph.EventRecord, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var records []morph.EventRecord
	for rows.Next() {
		var (
			rec               morph.EventRecord
			action            string
			started, finished int64
		)
		if err := rows.Scan(&rec.ID, &rec.Path, &rec.Destination, &rec.TargetExt, &rec.Destructive,
			&action, &rec.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		rec.Action = morph.Action(action)
		rec.StartedAt = time.Unix(0, started)
		rec.FinishedAt = time.Unix(0, finished)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	return records, nil
}

// normalizeLimit maps "no limit" to SQLite's LIMIT -1.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// Compile-time check that SQLiteJournal implements morph.EventRecorder interface
var _ morph.EventRecorder = (*SQLiteJournal)(nil)
