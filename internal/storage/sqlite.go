package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage is a key-value store on top of a single SQLite table.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := ":memory:"
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: an in-memory database lives and dies with it, and
	// SQLite doesn't benefit from more.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database path the storage was opened with.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Get returns the value stored under key and whether it exists.
func (s *SQLiteStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateContext(ctx); err != nil {
		return "", false, err
	}
	if err := validateKey(key); err != nil {
		return "", false, err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores a single value.
func (s *SQLiteStorage) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany writes all pairs in one transaction, overwriting existing values.
func (s *SQLiteStorage) SetMany(ctx context.Context, pairs map[string]string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(pairs) == 0 {
		return fmt.Errorf("%w: pairs", ErrEmptySlice)
	}

	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		if err := validateKey(key); err != nil {
			return err
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, key := range keys {
		if _, err := stmt.ExecContext(ctx, key, pairs[key]); err != nil {
			return fmt.Errorf("failed to write key %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are ignored.
func (s *SQLiteStorage) Delete(ctx context.Context, keys ...string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to delete key %q: %w", key, err)
		}
	}
	return nil
}
