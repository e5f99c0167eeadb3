package dbs

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

func IsPostgres(driverName string) bool {
	return driverName == DriverPostgres || driverName == "postgres"
}

// InsertIgnore builds an INSERT that silently skips rows conflicting on
// conflictColumn. Other errors still surface: MySQL uses a no-op
// ON DUPLICATE KEY UPDATE because INSERT IGNORE also downgrades truncation
// and constraint errors to warnings. Placeholders are "?"; callers Rebind
// for the target driver.
func InsertIgnore(driverName, table string, columns []string, conflictColumn string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	body := fmt.Sprintf("%s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)

	switch {
	case driverName == DriverMySQL:
		return fmt.Sprintf("INSERT INTO %s ON DUPLICATE KEY UPDATE %s = %s", body, conflictColumn, conflictColumn)
	case driverName == DriverSQLite:
		return "INSERT OR IGNORE INTO " + body
	case IsPostgres(driverName):
		return fmt.Sprintf("INSERT INTO %s ON CONFLICT (%s) DO NOTHING", body, conflictColumn)
	default:
		return "INSERT INTO " + body
	}
}

// LockClause returns the row-lock suffix for a SELECT inside a transaction.
// SQLite serializes writers on its single connection and has no row locks.
func LockClause(driverName string) string {
	if driverName == DriverSQLite {
		return ""
	}
	return " FOR UPDATE"
}

// InsertReturningID runs an INSERT and reports the generated id column.
func InsertReturningID(ctx context.Context, ext sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	if IsPostgres(ext.DriverName()) {
		var id int64
		if err := ext.QueryRowxContext(ctx, ext.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
