package app

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"github.com/de-tools/report-atlas/pkg/chart"
	"github.com/de-tools/report-atlas/pkg/document"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/services/pipeline"
	"github.com/de-tools/report-atlas/pkg/services/reports"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	"github.com/de-tools/report-atlas/pkg/store/duckdb/runs"
	"github.com/de-tools/report-atlas/pkg/store/source"
	"github.com/rs/zerolog"
)

// App holds the services shared by the command line and the web API.
type App struct {
	Config   *config.Config
	Registry reports.Registry
	Runner   *pipeline.Runner
	// History is nil when run history is disabled or unavailable.
	History runs.Store

	historyDB *stdsql.DB
}

type Options struct {
	Config   *config.Config
	Registry reports.Registry
	// OutputDir and ChartDir override the configured directories when set.
	OutputDir string
	ChartDir  string
	Recorders []pipeline.Recorder
}

func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Registry == nil {
		opts.Registry = reports.Default()
	}
	logger := zerolog.Ctx(ctx)
	cfg := opts.Config

	a := &App{Config: cfg, Registry: opts.Registry}
	recorders := opts.Recorders

	if cfg.History.Enabled {
		db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.History.Path})
		if err == nil {
			var store runs.Store
			store, err = runs.NewStore(db)
			if err == nil {
				a.History, a.historyDB = store, db
				recorders = append(recorders, store)
			} else {
				_ = db.Close()
			}
		}
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.History.Path).Msg("Run history disabled")
		}
	}

	outputDir := cfg.Output.Directory
	if opts.OutputDir != "" {
		outputDir = opts.OutputDir
	}
	chartDir := cfg.Output.ChartDirectory
	if opts.ChartDir != "" {
		chartDir = opts.ChartDir
	}

	a.Runner = pipeline.NewRunner(
		Opener(cfg),
		document.NewPDFWriter(),
		chart.NewPlotRenderer(),
		pipeline.RunnerConfig{OutputDir: outputDir, ChartDir: chartDir},
		recorders...,
	)
	return a, nil
}

// Opener resolves the database URL and connects for every run.
func Opener(cfg *config.Config) pipeline.Opener {
	return func(ctx context.Context) (*stdsql.DB, error) {
		dsn, err := cfg.DatabaseURL(ctx)
		if err != nil {
			return nil, err
		}
		return source.Open(ctx, source.Settings{
			Driver:         cfg.Database.Driver,
			DSN:            dsn,
			ConnectTimeout: cfg.Database.ConnectTimeout,
		})
	}
}

// Run creates a fresh instance of the named report and runs it.
func (a *App) Run(ctx context.Context, name string) (*pipeline.Outcome, error) {
	report, err := a.Registry.Create(name)
	if err != nil {
		return nil, err
	}
	return a.Runner.Run(ctx, report)
}

func (a *App) Close() error {
	if a.historyDB == nil {
		return nil
	}
	if err := a.historyDB.Close(); err != nil {
		return fmt.Errorf("failed to close history database: %w", err)
	}
	return nil
}
