package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

const defaultListLimit = 20

// Store keeps a history of report runs in the embedded database.
type Store interface {
	Record(ctx context.Context, run domain.RunSummary) error
	List(ctx context.Context, report string, limit int) ([]domain.RunSummary, error)
}

type runStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &runStore{db: db}, nil
}

func (s *runStore) Record(ctx context.Context, run domain.RunSummary) error {
	if run.RunID == "" {
		return fmt.Errorf("run id is required")
	}

	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}

	// empty values are stored as NULL
	var output, buildErr, finishedAt any
	if run.Output != "" {
		output = run.Output
	}
	if run.BuildError != "" {
		buildErr = run.BuildError
	}
	if !run.FinishedAt.IsZero() {
		finishedAt = run.FinishedAt
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO report_runs (
			run_id, report, state, output, started_at, finished_at,
			sections, degraded_sections, charts, build_error, summary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Report, run.State, output, run.StartedAt, finishedAt,
		len(run.Sections), run.Degraded(), run.Charts, buildErr, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert report run %s: %w", run.RunID, err)
	}
	return nil
}

func (s *runStore) List(ctx context.Context, report string, limit int) ([]domain.RunSummary, error) {
	logger := zerolog.Ctx(ctx)
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT summary FROM report_runs`
	args := []any{}
	if report != "" {
		query += ` WHERE report = ?`
		args = append(args, report)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list report runs: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close report run rows")
		}
	}(rows)

	var runs []domain.RunSummary
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan report run: %w", err)
		}
		var run domain.RunSummary
		if err := json.Unmarshal([]byte(payload), &run); err != nil {
			return nil, fmt.Errorf("decode report run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report runs: %w", err)
	}
	return runs, nil
}
