// Package store persists parsed documents and their entries in SQLite or
// PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// RetryableError wraps transient database errors (SQLite busy/locked,
// PostgreSQL serialization failures) that may succeed on retry.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Store is a document repository backed by sqlx.
type Store struct {
	db     *sqlx.DB
	driver string
	dsn    string
	log    *slog.Logger
}

// Open connects to databaseURL. Supported forms are sqlite://PATH,
// sqlite3://PATH and postgres:// or postgresql:// URLs.
func Open(ctx context.Context, databaseURL string, log *slog.Logger) (*Store, error) {
	driver, dsn, err := parseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == "sqlite3" {
		// One writer at a time; busy_timeout covers readers.
		db.SetMaxOpenConns(1)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, driver: driver, dsn: dsn, log: log.With("driver", driver)}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func parseURL(databaseURL string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return "sqlite3", sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite://")), nil
	case strings.HasPrefix(databaseURL, "sqlite3://"):
		return "sqlite3", sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite3://")), nil
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return "pgx", databaseURL, nil
	default:
		return "", "", fmt.Errorf("unsupported database url %q", databaseURL)
	}
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
}

// wrap annotates err with op and marks transient failures retryable.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("%s: %w", op, err)
	if isTransient(err) {
		return &RetryableError{Err: wrapped}
	}
	return wrapped
}

func isTransient(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
