package commands

import (
	"fmt"

	"github.com/de-tools/report-atlas/pkg/runtime/app"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/export"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type HistoryCmd struct {
	report   string
	limit    int
	newApp   AppFactory
	reporter *export.Reporter
}

func NewHistoryCmd(newApp AppFactory, reporter *export.Reporter) *cobra.Command {
	hc := &HistoryCmd{newApp: newApp, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded report runs",
		Args:  cobra.NoArgs,
		RunE:  hc.run,
	}

	cmd.Flags().StringVar(&hc.report, "report", "", "Only show runs of this report")
	cmd.Flags().IntVar(&hc.limit, "limit", 20, "Maximum number of runs to show")

	return cmd
}

func (hc *HistoryCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := hc.newApp(ctx, app.Options{})
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to close application")
		}
	}()

	if a.History == nil {
		return fmt.Errorf("run history is disabled")
	}
	runs, err := a.History.List(ctx, hc.report, hc.limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return hc.reporter.Runs(runs)
}
