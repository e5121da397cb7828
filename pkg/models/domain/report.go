package domain

import "time"

// RunSummary is the serialisable record of one report run.
type RunSummary struct {
	RunID       string           `json:"run_id" yaml:"run_id"`
	Report      string           `json:"report" yaml:"report"`
	Title       string           `json:"title" yaml:"title"`
	State       string           `json:"state" yaml:"state"`
	Output      string           `json:"output,omitempty" yaml:"output,omitempty"`
	StartedAt   time.Time        `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time        `json:"finished_at" yaml:"finished_at"`
	Sections    []SectionSummary `json:"sections,omitempty" yaml:"sections,omitempty"`
	Charts      int              `json:"charts" yaml:"charts"`
	BuildError  string           `json:"build_error,omitempty" yaml:"build_error,omitempty"`
	CleanupErrs []string         `json:"cleanup_errors,omitempty" yaml:"cleanup_errors,omitempty"`
}

// SectionSummary describes how one report section rendered.
type SectionSummary struct {
	Title        string `json:"title" yaml:"title"`
	Elements     int    `json:"elements" yaml:"elements"`
	Placeholders int    `json:"placeholders" yaml:"placeholders"`
	Degraded     bool   `json:"degraded" yaml:"degraded"`
}

// Degraded counts the sections that rendered only placeholders.
func (s RunSummary) Degraded() int {
	n := 0
	for _, section := range s.Sections {
		if section.Degraded {
			n++
		}
	}
	return n
}
