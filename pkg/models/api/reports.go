package api

import (
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

type Report struct {
	Name string `json:"name"`
}

type Section struct {
	Title        string `json:"title"`
	Elements     int    `json:"elements"`
	Placeholders int    `json:"placeholders"`
	Degraded     bool   `json:"degraded"`
}

// Run is the outcome of one report run as returned by the run and history endpoints.
type Run struct {
	RunID       string    `json:"run_id"`
	Report      string    `json:"report"`
	Title       string    `json:"title"`
	State       string    `json:"state"`
	Output      string    `json:"output,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DurationMs  int64     `json:"duration_ms"`
	Charts      int       `json:"charts"`
	Degraded    int       `json:"degraded_sections"`
	Sections    []Section `json:"sections"`
	BuildError  string    `json:"build_error,omitempty"`
	CleanupErrs []string  `json:"cleanup_errors,omitempty"`
	Error       string    `json:"error,omitempty"`
}

type Error struct {
	Message string `json:"message"`
}

func NewRun(s domain.RunSummary) Run {
	run := Run{
		RunID:       s.RunID,
		Report:      s.Report,
		Title:       s.Title,
		State:       s.State,
		Output:      s.Output,
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
		Charts:      s.Charts,
		Degraded:    s.Degraded(),
		Sections:    make([]Section, 0, len(s.Sections)),
		BuildError:  s.BuildError,
		CleanupErrs: s.CleanupErrs,
	}
	if !s.FinishedAt.IsZero() {
		run.DurationMs = s.FinishedAt.Sub(s.StartedAt).Milliseconds()
	}
	for _, section := range s.Sections {
		run.Sections = append(run.Sections, Section(section))
	}
	return run
}
