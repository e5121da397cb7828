package pipeline

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/de-tools/report-atlas/pkg/chart"
	"github.com/de-tools/report-atlas/pkg/document"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/store/sql"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrConnect marks a run that could not reach its database. It is the only error Run returns.
var ErrConnect = errors.New("database connection failed")

// State is the stage a run is in.
type State int

const (
	StateConnecting State = iota
	StateLoading
	StateCleaning
	StateRendering
	StateBuilding
	StateCleaningUp
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateLoading:
		return "loading"
	case StateCleaning:
		return "cleaning"
	case StateRendering:
		return "rendering"
	case StateBuilding:
		return "building"
	case StateCleaningUp:
		return "cleaning_up"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Report is one kind of document the pipeline can produce. A Report value holds the state of a
// single run and must not be reused.
type Report interface {
	Name() string
	Title() string
	OutputFile() string
	Load(ctx context.Context, loader *sql.Loader)
	Clean(ctx context.Context)
	Intro(env *Env) []document.Element
	Sections() []Section
}

// Opener connects to the source database.
type Opener func(ctx context.Context) (*stdsql.DB, error)

// Recorder receives the summary of every finished run.
type Recorder interface {
	Record(ctx context.Context, summary domain.RunSummary) error
}

type RunnerConfig struct {
	OutputDir  string
	ChartDir   string
	TableWidth float64
}

type Runner struct {
	open      Opener
	writer    document.Writer
	renderer  chart.Renderer
	recorders []Recorder
	config    RunnerConfig
	now       func() time.Time
}

func NewRunner(open Opener, writer document.Writer, renderer chart.Renderer, config RunnerConfig, recorders ...Recorder) *Runner {
	if config.OutputDir == "" {
		config.OutputDir = "."
	}
	if config.ChartDir == "" {
		config.ChartDir = "charts"
	}
	if config.TableWidth <= 0 {
		config.TableWidth = document.DefaultLayout().AvailableWidth()
	}
	return &Runner{
		open:      open,
		writer:    writer,
		renderer:  renderer,
		recorders: recorders,
		config:    config,
		now:       time.Now,
	}
}

// Run produces one report. Only a connection failure is returned as an error; every other
// failure is logged and reflected in the outcome.
func (r *Runner) Run(ctx context.Context, report Report) (*Outcome, error) {
	runID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("run_id", runID).Str("report", report.Name()).Logger()
	ctx = logger.WithContext(ctx)

	out := &Outcome{
		RunID:     runID,
		Report:    report.Name(),
		Title:     report.Title(),
		State:     StateConnecting,
		StartedAt: r.now(),
	}

	db, err := r.open(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database, no report generated")
		out.State = StateFailed
		out.FinishedAt = r.now()
		r.record(ctx, out)
		return out, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	var charts *chart.Artifacts
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		out.State = StateCleaningUp
		if charts != nil {
			if err := charts.Cleanup(); err != nil {
				logger.Warn().Err(err).Msg("Failed to remove chart files")
				out.CleanupErrs = append(out.CleanupErrs, err)
			}
		}
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close database connection")
			out.CleanupErrs = append(out.CleanupErrs, err)
		}
	}
	defer release()

	out.State = StateLoading
	logger.Info().Msg("Loading report data")
	report.Load(ctx, sql.NewLoader(db))

	out.State = StateCleaning
	report.Clean(ctx)

	out.State = StateRendering
	env := &Env{Renderer: r.renderer, TableWidth: r.config.TableWidth, Now: out.StartedAt}
	charts, err = chart.NewArtifacts(r.config.ChartDir, runID)
	if err != nil {
		logger.Warn().Err(err).Msg("Charts unavailable for this run")
	} else {
		env.Charts = charts
	}

	builder := document.NewBuilder(ctx)
	builder.Title(report.Title())
	builder.Add(report.Intro(env)...)
	for _, section := range report.Sections() {
		if section.Title != "" {
			builder.Heading(section.Title)
		}
		res := renderSection(ctx, section, env)
		builder.Add(res.Elements...)
		out.Sections = append(out.Sections, SectionOutcome{
			Title:        section.Title,
			Elements:     len(res.Elements),
			Placeholders: res.Placeholders,
			Degraded:     res.Degraded(),
		})
		out.Charts += countImages(res.Elements)
	}

	out.State = StateBuilding
	path := filepath.Join(r.config.OutputDir, report.OutputFile())
	if err := r.write(ctx, builder.Document(), path); err != nil {
		logger.Error().Err(err).Str("output", path).Msg("Failed to build document")
		out.BuildErr = err
	} else {
		out.Output = path
		logger.Info().Str("output", path).Msg("Report generated")
	}

	release()

	out.State = StateDone
	out.FinishedAt = r.now()
	r.record(ctx, out)
	return out, nil
}

// write builds the document, turning a writer panic into an error.
func (r *Runner) write(ctx context.Context, doc document.Document, path string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("document writer panicked: %v", p)
		}
	}()
	return r.writer.Write(ctx, doc, path)
}

func renderSection(ctx context.Context, section Section, env *Env) (res Result) {
	logger := zerolog.Ctx(ctx).With().Str("section", section.Title).Logger()
	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Msg("Section failed")
			res = Unavailable("[Section '%s' could not be generated]", section.Title)
		}
	}()

	res = section.Render(logger.WithContext(ctx), env)
	if res.Degraded() {
		logger.Warn().Int("placeholders", res.Placeholders).Msg("Section rendered placeholders only")
	}
	return res
}

func countImages(elements []document.Element) int {
	n := 0
	for _, e := range elements {
		if e.Kind == document.KindImage {
			n++
		}
	}
	return n
}

func (r *Runner) record(ctx context.Context, out *Outcome) {
	summary := out.Summary()
	for _, rec := range r.recorders {
		if err := rec.Record(ctx, summary); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to record run")
		}
	}
}
