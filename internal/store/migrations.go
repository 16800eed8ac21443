package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

// MigrationTableName records applied schema versions.
const MigrationTableName = "schema_migrations"

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// gooseLogger forwards goose output to slog. Fatalf does not exit; the
// error is returned to the caller instead.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Migrate applies every pending versioned migration for the store's dialect.
// Already applied versions are skipped, so running it twice is a no-op.
func (s *SQLStore) Migrate(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "migrations", "dialect", s.dialect.name)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(MigrationTableName)
	goose.SetLogger(gooseLogger{logger: logger})

	if err := goose.SetDialect(s.dialect.name); err != nil {
		return &MigrationError{Dialect: s.dialect.name, Err: err}
	}

	if err := goose.UpContext(ctx, s.db.DB, s.dialect.migrations); err != nil {
		return &MigrationError{Dialect: s.dialect.name, Err: err}
	}

	version, err := goose.GetDBVersionContext(ctx, s.db.DB)
	if err != nil {
		return &MigrationError{Dialect: s.dialect.name, Err: fmt.Errorf("failed to read schema version: %w", err)}
	}

	logger.Info("database schema up to date", "version", version)
	return nil
}
