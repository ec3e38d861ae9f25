package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jimmc414/onefilellm/internal/model"
)

// HistoryDB provides SQLite-based storage for aggregation run history.
// It manages connection pooling and provides methods for saving runs
// and listing them back.
//
// Design decision: We use a single database file for all runs rather
// than one file per run. This keeps history queries trivial and makes
// backup/restore a single-file operation.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// FileName is the database file created inside the database directory.
const FileName = "onefilellm.db"

// Open opens or creates a HistoryDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer; a single connection avoids
	// SQLITE_BUSY races between the insert statements of one run.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one row per aggregation invocation
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		token_count INTEGER NOT NULL DEFAULT 0,
		source_count INTEGER NOT NULL DEFAULT 0,
		failed_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Per-input outcomes, in processing order
	CREATE TABLE IF NOT EXISTS run_sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		position INTEGER NOT NULL,
		input TEXT NOT NULL,
		kind TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		UNIQUE(run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_sources_run ON run_sources(run_id);

	-- URLs visited by web crawls during a run
	CREATE TABLE IF NOT EXISTS processed_urls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		position INTEGER NOT NULL,
		url TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_urls_run ON processed_urls(run_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// sqliteTimeFormat is SQLite's default datetime text format. Writing
// it explicitly keeps stored values comparable with datetime('now')
// and parseable on the way back out.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// SaveRun stores a complete run record. The run row and its child rows
// are written in one transaction, so history never shows a run with
// half its sources.
func (hdb *HistoryDB) SaveRun(ctx context.Context, rec *model.RunRecord) error {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, started_at, finished_at, token_count, source_count, failed_count)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.StartedAt.UTC().Format(sqliteTimeFormat),
		rec.FinishedAt.UTC().Format(sqliteTimeFormat),
		rec.TokenCount,
		len(rec.Sources),
		rec.FailedSources(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, src := range rec.Sources {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO run_sources (run_id, position, input, kind, error)
		VALUES (?, ?, ?, ?, ?)
		`, rec.ID, src.Position, src.Input, string(src.Kind), src.Err)
		if err != nil {
			return fmt.Errorf("failed to insert run source: %w", err)
		}
	}

	for i, url := range rec.ProcessedURLs {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO processed_urls (run_id, position, url)
		VALUES (?, ?, ?)
		`, rec.ID, i, url)
		if err != nil {
			return fmt.Errorf("failed to insert processed url: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RunSummary contains one history line about a stored run.
// This is used for listing run history without loading the full record.
type RunSummary struct {
	// ID is the run's UUID.
	ID string

	// StartedAt is when input processing began.
	StartedAt time.Time

	// FinishedAt is when the output document was assembled.
	FinishedAt time.Time

	// TokenCount is the token count of the final document.
	TokenCount int

	// SourceCount is how many inputs the run processed.
	SourceCount int

	// FailedCount is how many inputs degraded to error blocks.
	FailedCount int
}

// RecentRuns returns up to limit run summaries, newest first. limit
// must be positive.
func (hdb *HistoryDB) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, started_at, finished_at, token_count, source_count, failed_count
	FROM runs
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`

	rows, err := hdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var s RunSummary
		var started, finished string

		if err := rows.Scan(&s.ID, &started, &finished, &s.TokenCount, &s.SourceCount, &s.FailedCount); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}

		s.StartedAt = parseTimestamp(started)
		s.FinishedAt = parseTimestamp(finished)
		results = append(results, s)
	}

	return results, rows.Err()
}

// GetRun retrieves one stored run with its sources and crawl URLs.
// Returns nil without error when no run has that ID.
func (hdb *HistoryDB) GetRun(ctx context.Context, id string) (*model.RunRecord, error) {
	var rec model.RunRecord
	var started, finished string

	err := hdb.db.QueryRowContext(ctx, `
	SELECT id, started_at, finished_at, token_count
	FROM runs
	WHERE id = ?
	`, id).Scan(&rec.ID, &started, &finished, &rec.TokenCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	rec.StartedAt = parseTimestamp(started)
	rec.FinishedAt = parseTimestamp(finished)

	rows, err := hdb.db.QueryContext(ctx, `
	SELECT position, input, kind, error
	FROM run_sources
	WHERE run_id = ?
	ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var src model.SourceRecord
		var kind string
		if err := rows.Scan(&src.Position, &src.Input, &kind, &src.Err); err != nil {
			return nil, fmt.Errorf("failed to scan run source: %w", err)
		}
		src.Kind = model.SourceKind(kind)
		rec.Sources = append(rec.Sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	urlRows, err := hdb.db.QueryContext(ctx, `
	SELECT url
	FROM processed_urls
	WHERE run_id = ?
	ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get processed urls: %w", err)
	}
	defer urlRows.Close()

	for urlRows.Next() {
		var url string
		if err := urlRows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan processed url: %w", err)
		}
		rec.ProcessedURLs = append(rec.ProcessedURLs, url)
	}

	return &rec, urlRows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
