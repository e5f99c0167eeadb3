package dbs

import (
	"codequest/configs"
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the store named by cfg.DBDriver and verifies the
// connection. The returned handle is owned by the caller.
func Open(ctx context.Context, cfg *configs.Config) (*sqlx.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.DBDriver, err)
	}

	if cfg.DBDriver == DriverSQLite {
		// single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DBDriver, err)
	}

	return db, nil
}

func DSN(cfg *configs.Config) (string, error) {
	switch cfg.DBDriver {
	case DriverMySQL:
		// Strict mode turns over-long values into errors instead of truncation.
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&sql_mode=%%27TRADITIONAL%%27",
			cfg.DBUser, cfg.DBPassword,
			cfg.DBHost, cfg.DBPort,
			cfg.DBName,
		), nil
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort,
			cfg.DBUser, cfg.DBPassword,
			cfg.DBName, cfg.DBSslMode,
		), nil
	case DriverSQLite:
		return SQLiteDSN(cfg.SQLitePath), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", cfg.DBDriver)
	}
}

// SQLiteDSN opens path in WAL mode. Transactions begin IMMEDIATE so a second
// writer waits on the busy timeout instead of failing on a stale snapshot.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_txlock=immediate", path)
}
