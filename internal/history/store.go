// Package history records finished conversions in SQLite.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when schema.sql changes incompatibly.
const schemaVersion = 1

var ErrSchemaMismatch = errors.New("schema version mismatch")

// Entry is one finished job.
type Entry struct {
	JobID        string
	InputPath    string
	OutputPath   string
	Preset       string
	Status       string
	ErrorMessage string
	FinishedAt   time.Time
}

// Store is the history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pipelines record concurrently, one connection serializes the writes.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts e. A zero FinishedAt is set to now.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.FinishedAt.IsZero() {
		e.FinishedAt = time.Now()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversions (
            job_id, input_path, output_path, preset, status, error_message, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.JobID,
		e.InputPath,
		nullableString(e.OutputPath),
		e.Preset,
		e.Status,
		nullableString(e.ErrorMessage),
		e.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT job_id, input_path, output_path, preset, status, error_message, finished_at
        FROM conversions ORDER BY finished_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			output     sql.NullString
			errMessage sql.NullString
			finished   string
		)
		if err := rows.Scan(&e.JobID, &e.InputPath, &output, &e.Preset, &e.Status, &errMessage, &finished); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		e.OutputPath = output.String
		e.ErrorMessage = errMessage.String
		e.FinishedAt, err = time.Parse(time.RFC3339Nano, finished)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at %q: %w", finished, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: %s has version %d, expected %d (delete the file to start over)",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
