package pipeline

import (
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

type SectionOutcome struct {
	Title        string
	Elements     int
	Placeholders int
	Degraded     bool
}

// Outcome describes a finished run.
type Outcome struct {
	RunID       string
	Report      string
	Title       string
	Output      string
	State       State
	StartedAt   time.Time
	FinishedAt  time.Time
	Sections    []SectionOutcome
	Charts      int
	BuildErr    error
	CleanupErrs []error
}

func (o *Outcome) Duration() time.Duration {
	if o.FinishedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}

// Summary converts the outcome into its serialisable form.
func (o *Outcome) Summary() domain.RunSummary {
	s := domain.RunSummary{
		RunID:      o.RunID,
		Report:     o.Report,
		Title:      o.Title,
		State:      o.State.String(),
		Output:     o.Output,
		StartedAt:  o.StartedAt,
		FinishedAt: o.FinishedAt,
		Charts:     o.Charts,
	}
	for _, sec := range o.Sections {
		s.Sections = append(s.Sections, domain.SectionSummary{
			Title:        sec.Title,
			Elements:     sec.Elements,
			Placeholders: sec.Placeholders,
			Degraded:     sec.Degraded,
		})
	}
	if o.BuildErr != nil {
		s.BuildError = o.BuildErr.Error()
	}
	for _, err := range o.CleanupErrs {
		s.CleanupErrs = append(s.CleanupErrs, err.Error())
	}
	return s
}
