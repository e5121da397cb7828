package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ReportRunsSchema = `
	CREATE TABLE IF NOT EXISTS report_runs (
		run_id VARCHAR PRIMARY KEY,
		report VARCHAR NOT NULL,
		state VARCHAR NOT NULL,
		output VARCHAR,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		sections INTEGER,
		degraded_sections INTEGER,
		charts INTEGER,
		build_error VARCHAR,
		summary VARCHAR NOT NULL
	);
`

var bootQueries = []string{
	ReportRunsSchema,
}

type Settings struct {
	DbPath string
}

// NewDB opens the embedded run-history database and creates its tables.
func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(c), nil
}
