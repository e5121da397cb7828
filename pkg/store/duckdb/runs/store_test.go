package runs

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	store, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{db: db, store: store}
}

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		store, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestStore_RecordAndList(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	feedbackRun := domain.RunSummary{
		RunID:      "run-1",
		Report:     "feedback",
		Title:      "User Feedback Analysis Report",
		State:      "done",
		Output:     "User_Feedback_Analysis_Report.pdf",
		StartedAt:  base,
		FinishedAt: base.Add(3 * time.Second),
		Sections: []domain.SectionSummary{
			{Title: "Overall Satisfaction Metrics", Elements: 3},
			{Title: "Sentiment Analysis", Elements: 1, Placeholders: 1, Degraded: true},
		},
		Charts: 2,
	}
	behaviorRun := domain.RunSummary{
		RunID:      "run-2",
		Report:     "behavior",
		State:      "done",
		StartedAt:  base.Add(time.Hour),
		FinishedAt: base.Add(time.Hour + time.Second),
		BuildError: "disk full",
	}

	require.NoError(t, f.store.Record(ctx, feedbackRun))
	require.NoError(t, f.store.Record(ctx, behaviorRun))

	t.Run("list all newest first", func(t *testing.T) {
		runs, err := f.store.List(ctx, "", 10)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "run-2", runs[0].RunID)
		assert.Equal(t, "disk full", runs[0].BuildError)
	})

	t.Run("list by report", func(t *testing.T) {
		runs, err := f.store.List(ctx, "feedback", 0)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, 1, runs[0].Degraded())
		assert.Equal(t, "User_Feedback_Analysis_Report.pdf", runs[0].Output)
	})

	t.Run("nullable columns", func(t *testing.T) {
		var output, buildErr sql.NullString
		var finishedAt sql.NullTime
		var degraded int

		err := f.db.QueryRowContext(ctx,
			`SELECT output, build_error, finished_at, degraded_sections FROM report_runs WHERE run_id = ?`, "run-2",
		).Scan(&output, &buildErr, &finishedAt, &degraded)

		require.NoError(t, err)
		assert.False(t, output.Valid)
		assert.Equal(t, sql.NullString{String: "disk full", Valid: true}, buildErr)
		assert.True(t, finishedAt.Valid)
		assert.Zero(t, degraded)

		err = f.db.QueryRowContext(ctx,
			`SELECT output, build_error FROM report_runs WHERE run_id = ?`, "run-1",
		).Scan(&output, &buildErr)

		require.NoError(t, err)
		assert.Equal(t, "User_Feedback_Analysis_Report.pdf", output.String)
		assert.False(t, buildErr.Valid)
	})

	t.Run("duplicate run id", func(t *testing.T) {
		assert.Error(t, f.store.Record(ctx, feedbackRun))
	})

	t.Run("missing run id", func(t *testing.T) {
		assert.Error(t, f.store.Record(ctx, domain.RunSummary{Report: "x"}))
	})
}
