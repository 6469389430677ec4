// Package sqlite opens a single-node SQLite database guarded by a process lock.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// ErrLocked is returned when another process holds the database lock.
var ErrLocked = errors.New("sqlite database is locked by another process")

// DB pairs the handle with the lock that makes this process its only writer.
type DB struct {
	*sql.DB
	lock *flock.Flock
}

// Open takes <path>.lock, opens the database in WAL mode and applies the schema.
func Open(ctx context.Context, path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	clean := filepath.Clean(path)

	lock := flock.New(clean + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire sqlite lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	dsn := "file:" + clean + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &DB{DB: db, lock: lock}, nil
}

// Close closes the handle and releases the lock.
func (d *DB) Close() error {
	if d == nil {
		return nil
	}
	err := d.DB.Close()
	if unlockErr := d.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}
