package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "modernc.org/sqlite"
)

const defaultConnectTimeout = 10 * time.Second

// Settings describe the database the reports read from.
type Settings struct {
	// Driver is one of postgres (pgx), sqlite or duckdb.
	Driver         string
	DSN            string
	ConnectTimeout time.Duration
}

// DriverName maps a configured driver alias to the registered database/sql driver.
func DriverName(alias string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(alias)) {
	case "", "pgx", "postgres", "postgresql":
		return "pgx", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	case "duckdb":
		return "duckdb", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", alias)
	}
}

// Open connects to the source database and verifies the connection with a ping.
// There is no retry: callers treat any error as fatal for the run.
func Open(ctx context.Context, settings Settings) (*sql.DB, error) {
	driver, err := DriverName(settings.Driver)
	if err != nil {
		return nil, err
	}
	if settings.DSN == "" {
		return nil, fmt.Errorf("database connection string is empty")
	}

	db, err := sql.Open(driver, settings.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// one writer, and in-memory databases must share a single connection
		db.SetMaxOpenConns(1)
	}

	timeout := settings.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}
