package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleRun() domain.RunSummary {
	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return domain.RunSummary{
		RunID:      "run-1",
		Report:     "feedback",
		Title:      "User Feedback Analysis Report",
		State:      "done",
		Output:     "out/User_Feedback_Analysis_Report.pdf",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Charts:     3,
		Sections: []domain.SectionSummary{
			{Title: "1. Overall Satisfaction Metrics", Elements: 3},
			{Title: "2. Service-Specific Performance", Elements: 1, Placeholders: 1, Degraded: true},
		},
	}
}

func TestStatus(t *testing.T) {
	color.NoColor = true

	run := sampleRun()
	assert.Equal(t, "done (1 degraded)", Status(run))

	run.Sections = run.Sections[:1]
	assert.Equal(t, "done", Status(run))

	run.BuildError = "disk full"
	assert.Equal(t, "build failed", Status(run))

	assert.Equal(t, "failed", Status(domain.RunSummary{State: "failed"}))
}

func TestReporter_Runs(t *testing.T) {
	color.NoColor = true

	t.Run("empty history", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewReporter(&buf).Runs(nil))
		assert.Equal(t, "No report runs recorded.\n", buf.String())
	})

	t.Run("one row per run", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewReporter(&buf).Runs([]domain.RunSummary{sampleRun()}))

		out := buf.String()
		assert.Contains(t, out, "RUN ID")
		assert.Contains(t, out, "run-1")
		assert.Contains(t, out, "1.5s")
		assert.Contains(t, out, "out/User_Feedback_Analysis_Report.pdf")
	})
}

func TestReporter_Sections(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	require.NoError(t, NewReporter(&buf).Sections(sampleRun()))

	out := buf.String()
	assert.Contains(t, out, "User Feedback Analysis Report (run-1)")
	assert.Contains(t, out, "unavailable")
	assert.Contains(t, out, "ok")
}

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()
	path := SummaryPath(filepath.Join(dir, "User_Feedback_Analysis_Report.pdf"))
	assert.Equal(t, filepath.Join(dir, "User_Feedback_Analysis_Report.summary.yaml"), path)

	require.NoError(t, WriteSummary(path, sampleRun()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded domain.RunSummary
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Len(t, decoded.Sections, 2)
	assert.True(t, decoded.Sections[1].Degraded)
}
