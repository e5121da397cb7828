package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/runtime/app"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/report-atlas/pkg/services/pipeline"
	"github.com/de-tools/report-atlas/pkg/services/reports"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// AppFactory builds the application once configuration has been loaded.
type AppFactory func(ctx context.Context, opts app.Options) (*app.App, error)

const allReports = "all"

type RunCmd struct {
	outputDir string
	chartDir  string
	summary   bool
	details   bool
	newApp    AppFactory
	reporter  *export.Reporter
}

func NewRunCmd(newApp AppFactory, reporter *export.Reporter) *cobra.Command {
	rc := &RunCmd{newApp: newApp, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "run <report>... | all",
		Short: "Generate one or more PDF reports",
		Args:  cobra.MinimumNArgs(1),
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.outputDir, "output-dir", "", "Directory for generated documents (overrides output.directory)")
	cmd.Flags().StringVar(&rc.chartDir, "chart-dir", "", "Directory for temporary chart images (overrides output.chart_directory)")
	cmd.Flags().BoolVar(&rc.summary, "summary", false, "Write a YAML run summary next to each document")
	cmd.Flags().BoolVar(&rc.details, "details", false, "Print the per-section breakdown of each run")

	return cmd
}

func (rc *RunCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	a, err := rc.newApp(ctx, app.Options{OutputDir: rc.outputDir, ChartDir: rc.chartDir})
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close application")
		}
	}()

	names, err := resolveReports(a.Registry.List(), args)
	if err != nil {
		return err
	}

	var (
		summaries  []domain.RunSummary
		connectErr error
	)
	for _, name := range names {
		outcome, err := a.Run(ctx, name)
		if outcome != nil {
			summary := outcome.Summary()
			summaries = append(summaries, summary)
			if (rc.summary || a.Config.Output.Summary) && outcome.Output != "" {
				path := export.SummaryPath(outcome.Output)
				if err := export.WriteSummary(path, summary); err != nil {
					logger.Warn().Err(err).Str("path", path).Msg("Failed to write run summary")
				}
			}
		}
		if err != nil {
			if !errors.Is(err, pipeline.ErrConnect) {
				return err
			}
			connectErr = err
		}
	}

	if err := rc.reporter.Runs(summaries); err != nil {
		return err
	}
	if rc.details {
		for _, s := range summaries {
			if err := rc.reporter.Sections(s); err != nil {
				return err
			}
		}
	}
	return connectErr
}

// resolveReports expands "all" and rejects unknown names before anything runs.
func resolveReports(known, args []string) ([]string, error) {
	if len(args) == 1 && args[0] == allReports {
		return known, nil
	}
	registered := make(map[string]struct{}, len(known))
	for _, name := range known {
		registered[name] = struct{}{}
	}
	for _, name := range args {
		if _, ok := registered[name]; !ok {
			return nil, fmt.Errorf("%w: %q, available: %v", reports.ErrUnknownReport, name, known)
		}
	}
	return args, nil
}
