package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/report-atlas/pkg/dataset"
	"github.com/rs/zerolog"
)

// Querier is the read side of *sql.DB.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Loader turns read queries into result sets. Query failures never escape: they are logged
// and replaced by an empty result set so that report sections degrade on their own.
type Loader struct {
	db Querier
}

func NewLoader(db Querier) *Loader {
	return &Loader{db: db}
}

// Load runs query and returns its rows as a result set named after table.
func (l *Loader) Load(ctx context.Context, table, query string, args ...any) dataset.ResultSet {
	logger := zerolog.Ctx(ctx)

	rs, err := l.query(ctx, table, query, args...)
	if err != nil {
		logger.Warn().Err(err).Str("table", table).Msg("query failed, continuing with an empty result set")
		return dataset.Empty(table)
	}
	if rs.IsEmpty() {
		logger.Warn().Str("table", table).Msg("table is empty or query returned no rows")
	} else {
		logger.Debug().Str("table", table).Int("rows", rs.Len()).Msg("table loaded")
	}
	return rs
}

func (l *Loader) query(ctx context.Context, table, query string, args ...any) (dataset.ResultSet, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return dataset.ResultSet{}, fmt.Errorf("%s query failed: %w", table, err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Str("table", table).Msg("failed to close query rows")
		}
	}(rows)

	columns, err := rows.Columns()
	if err != nil {
		return dataset.ResultSet{}, fmt.Errorf("%s columns: %w", table, err)
	}

	rs := dataset.ResultSet{Name: table, Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return dataset.ResultSet{}, fmt.Errorf("%s scan: %w", table, err)
		}

		row := make(dataset.Row, len(columns))
		for i, col := range columns {
			row[col] = normalize(values[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return dataset.ResultSet{}, fmt.Errorf("%s rows: %w", table, err)
	}

	return rs, nil
}

// normalize copies driver-owned byte slices into strings.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
