package dbs

import (
	"codequest/internal/dbs/migrations"
	"codequest/internal/logger"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// migrationLockKey names the advisory lock held while migrating.
const migrationLockKey = "codequest_schema_migrations"

// Migrate applies every embedded migration for the connection's driver that
// is newer than the recorded schema version. Concurrent callers against one
// database take turns on an advisory lock; a version applied by another
// caller in the meantime counts as done.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	dir := db.DriverName()
	if dir == "postgres" {
		dir = DriverPostgres
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration connection: %w", err)
	}
	defer conn.Close()

	unlock, err := lockMigrations(ctx, conn, dir)
	if err != nil {
		return err
	}
	defer unlock()

	_, err = conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at VARCHAR(64) NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	current, err := SchemaVersion(ctx, conn)
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("no migrations for driver %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	applied := 0
	for _, name := range files {
		version, err := parseVersion(name)
		if err != nil {
			logger.Log.Warn("Skipping non-migration file", zap.String("name", name), zap.Error(err))
			continue
		}
		if version <= current {
			continue
		}

		data, err := fs.ReadFile(migrations.FS, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		if err := applyMigration(ctx, conn, version, string(data)); err != nil {
			// SQLite has no advisory lock; another process may have won.
			if latest, verr := SchemaVersion(ctx, conn); verr == nil && latest >= version {
				logger.Log.Info("Migration applied concurrently", zap.String("name", name), zap.Int("version", version))
				current = latest
				continue
			}
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}

		applied++
		logger.Log.Info("Applied migration", zap.String("name", name), zap.Int("version", version))
	}

	if applied > 0 {
		logger.Log.Info("Migrations complete", zap.Int("applied", applied))
	}
	return nil
}

// lockMigrations takes a session-level advisory lock on conn. SQLite
// serializes writers itself and gets a no-op unlock.
func lockMigrations(ctx context.Context, conn *sqlx.Conn, driverName string) (func(), error) {
	var lockQuery, unlockQuery string
	switch {
	case IsPostgres(driverName):
		lockQuery = `SELECT pg_advisory_lock(hashtext($1))`
		unlockQuery = `SELECT pg_advisory_unlock(hashtext($1))`
	case driverName == DriverMySQL:
		lockQuery = `SELECT GET_LOCK(?, 60)`
		unlockQuery = `SELECT RELEASE_LOCK(?)`
	default:
		return func() {}, nil
	}

	if driverName == DriverMySQL {
		// GET_LOCK reports 0 on timeout and NULL on error.
		var acquired sql.NullInt64
		if err := conn.QueryRowxContext(ctx, lockQuery, migrationLockKey).Scan(&acquired); err != nil {
			return nil, fmt.Errorf("failed to lock migrations: %w", err)
		}
		if !acquired.Valid || acquired.Int64 != 1 {
			return nil, fmt.Errorf("failed to lock migrations: timed out waiting for %s", migrationLockKey)
		}
	} else if _, err := conn.ExecContext(ctx, lockQuery, migrationLockKey); err != nil {
		return nil, fmt.Errorf("failed to lock migrations: %w", err)
	}

	return func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := conn.ExecContext(unlockCtx, unlockQuery, migrationLockKey); err != nil {
			logger.Log.Warn("Failed to release migration lock", zap.Error(err))
		}
	}, nil
}

func SchemaVersion(ctx context.Context, q sqlx.QueryerContext) (int, error) {
	var version int
	if err := sqlx.GetContext(ctx, q, &version, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

func applyMigration(ctx context.Context, conn *sqlx.Conn, version int, script string) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The MySQL driver rejects multi-statement Exec without multiStatements.
	for _, stmt := range splitStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"),
		version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

func splitStatements(script string) []string {
	var stmts []string
	for _, part := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// parseVersion extracts 1 from "001_initial.sql".
func parseVersion(name string) (int, error) {
	parts := strings.SplitN(name, "_", 2)
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid migration filename: %s", name)
	}
	var version int
	if _, err := fmt.Sscanf(parts[0], "%d", &version); err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return version, nil
}
