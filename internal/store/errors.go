package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when an operation keyed by id matched no row.
	ErrNotFound = errors.New("task not found")

	// ErrConstraint is returned when a write violates a schema constraint.
	ErrConstraint = errors.New("constraint violation")
)

// integrityConstraintClass is the PostgreSQL SQLSTATE class for integrity
// constraint violations (23505 unique, 23514 check, 23502 not null, ...).
const integrityConstraintClass = "23"

// StorageError reports a failed round-trip to the store.
type StorageError struct {
	Op  string // the repository operation, e.g. "create task"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConnectionError reports that the store could not be reached or the
// connection string could not be understood.
type ConnectionError struct {
	URL string // redacted
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// MigrationError reports a schema migration that failed to apply.
type MigrationError struct {
	Dialect string
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("failed to migrate %s database: %v", e.Dialect, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// mapError wraps a driver error into a StorageError, tagging constraint
// violations with ErrConstraint.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if isConstraintViolation(err) {
		err = fmt.Errorf("%w: %w", ErrConstraint, err)
	}

	return &StorageError{Op: op, Err: err}
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, integrityConstraintClass)
	}

	return false
}
