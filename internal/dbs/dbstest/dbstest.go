// Package dbstest opens throwaway migrated databases for tests.
package dbstest

import (
	"codequest/internal/dbs"
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

// OpenSQLite returns a migrated SQLite database in t's temp dir. It is
// closed when the test finishes.
func OpenSQLite(t testing.TB) *sqlx.DB {
	t.Helper()

	dsn := dbs.SQLiteDSN(filepath.Join(t.TempDir(), "test.db"))
	db, err := sqlx.Open(dbs.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := dbs.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
