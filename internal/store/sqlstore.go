package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const pingTimeout = 5 * time.Second

// dialect describes how to reach one kind of relational store.
type dialect struct {
	name       string // goose dialect
	driver     string // database/sql driver
	migrations string // directory inside migrationsFS
}

var (
	sqliteDialect   = dialect{name: "sqlite3", driver: "sqlite3", migrations: "migrations/sqlite"}
	postgresDialect = dialect{name: "postgres", driver: "pgx", migrations: "migrations/postgres"}
)

// sqliteDefaults are added to a sqlite connection string unless the caller
// already set them.
var sqliteDefaults = map[string]string{
	"_foreign_keys": "on",
	"_busy_timeout": "5000",
}

// SQLStore implements the Store interface on top of a database/sql pool.
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect
	url     string // redacted, for logs
}

// Open parses a connection URL, opens a bounded connection pool and checks
// that the store answers. Supported schemes are sqlite: and postgres://.
func Open(ctx context.Context, rawURL string) (*SQLStore, error) {
	d, dsn, err := parseDatabaseURL(rawURL)
	if err != nil {
		return nil, &ConnectionError{URL: RedactURL(rawURL), Err: err}
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, &ConnectionError{URL: RedactURL(rawURL), Err: err}
	}
	configurePool(db, d)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, &ConnectionError{URL: RedactURL(rawURL), Err: err}
	}

	return newSQLStore(sqlx.NewDb(db, d.driver), d, RedactURL(rawURL)), nil
}

func newSQLStore(db *sqlx.DB, d dialect, redactedURL string) *SQLStore {
	return &SQLStore{db: db, dialect: d, url: redactedURL}
}

func configurePool(db *sql.DB, d dialect) {
	if d == sqliteDialect {
		// One connection: sqlite serialises writers anyway, and a
		// :memory: database only lives as long as its connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
}

func parseDatabaseURL(rawURL string) (dialect, string, error) {
	switch {
	case strings.HasPrefix(rawURL, "sqlite:"):
		dsn, err := sqliteDSN(rawURL)
		return sqliteDialect, dsn, err
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		u, err := url.Parse(rawURL)
		if err != nil {
			return dialect{}, "", fmt.Errorf("malformed database url: %w", err)
		}
		if u.Host == "" {
			return dialect{}, "", errors.New("malformed database url: missing host")
		}
		return postgresDialect, rawURL, nil
	default:
		return dialect{}, "", errors.New("unsupported database url scheme, expected sqlite: or postgres://")
	}
}

// sqliteDSN turns sqlite://path?query (or sqlite:path) into a go-sqlite3
// file: URI with the default pragmas applied.
func sqliteDSN(rawURL string) (string, error) {
	rest := strings.TrimPrefix(rawURL, "sqlite:")
	rest = strings.TrimPrefix(rest, "//")

	path, rawQuery, _ := strings.Cut(rest, "?")
	if path == "" {
		return "", errors.New("malformed database url: missing sqlite path")
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", fmt.Errorf("malformed database url: %w", err)
	}
	for k, v := range sqliteDefaults {
		if !query.Has(k) {
			query.Set(k, v)
		}
	}

	return "file:" + path + "?" + query.Encode(), nil
}

// RedactURL masks the password of a connection URL for safe logging.
func RedactURL(rawURL string) string {
	if !strings.Contains(rawURL, "://") || strings.HasPrefix(rawURL, "sqlite:") {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}

	return u.String()
}

// Dialect returns the name of the SQL dialect spoken by the store.
func (s *SQLStore) Dialect() string {
	return s.dialect.name
}

// URL returns the redacted connection URL.
func (s *SQLStore) URL() string {
	return s.url
}

// Ping checks that the store still answers.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return mapError("ping", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
