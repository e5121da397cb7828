package metrics

import (
	"context"
	"errors"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_atlas_runs_total",
			Help: "Total number of report runs by final state",
		},
		[]string{"report", "state"},
	)

	SectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_atlas_sections_total",
			Help: "Total number of rendered report sections by status",
		},
		[]string{"report", "status"},
	)

	BuildFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_atlas_build_failures_total",
			Help: "Total number of documents that failed to build",
		},
		[]string{"report"},
	)

	CleanupFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_atlas_cleanup_failures_total",
			Help: "Total number of cleanup steps that failed",
		},
		[]string{"report"},
	)

	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_atlas_run_duration_seconds",
			Help:    "Report run duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"report"},
	)
)

const (
	SectionOK       = "ok"
	SectionPartial  = "partial"
	SectionDegraded = "degraded"
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{RunsTotal, SectionsTotal, BuildFailures, CleanupFailures, RunDuration}
}

// Register adds the report collectors to reg. Registering twice with the same registerer is
// not an error.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// Recorder turns run summaries into metric updates.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Record(_ context.Context, run domain.RunSummary) error {
	RunsTotal.WithLabelValues(run.Report, run.State).Inc()

	for _, s := range run.Sections {
		SectionsTotal.WithLabelValues(run.Report, SectionStatus(s)).Inc()
	}
	if run.BuildError != "" {
		BuildFailures.WithLabelValues(run.Report).Inc()
	}
	if n := len(run.CleanupErrs); n > 0 {
		CleanupFailures.WithLabelValues(run.Report).Add(float64(n))
	}
	if !run.FinishedAt.IsZero() {
		RunDuration.WithLabelValues(run.Report).Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())
	}
	return nil
}

// SectionStatus classifies a section by how many of its elements are placeholders.
func SectionStatus(s domain.SectionSummary) string {
	switch {
	case s.Degraded:
		return SectionDegraded
	case s.Placeholders > 0:
		return SectionPartial
	default:
		return SectionOK
	}
}
