package commands

import (
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/report-atlas/pkg/services/reports"
	"github.com/spf13/cobra"
)

func NewListCmd(registry reports.Registry, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return reporter.Reports(registry.List())
		},
	}
}
