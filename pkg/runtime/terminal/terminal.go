package terminal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/report-atlas/pkg/runtime/app"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/services/reports"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	registry reports.Registry
	reporter *export.Reporter
	logOut   io.Writer
	rootCmd  *cobra.Command

	cfgPath   string
	logLevel  string
	logFormat string
	cfg       *config.Config
}

// Options contain configuration for the CLI
type Options struct {
	Registry reports.Registry
	Output   io.Writer
	// LogOutput receives the structured log (default: stderr)
	LogOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.Registry == nil {
		opts.Registry = reports.Default()
	}

	cli := &CLI{
		registry: opts.Registry,
		reporter: export.NewReporter(opts.Output),
		logOut:   opts.LogOutput,
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides the process arguments.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "report-atlas",
		Short:             "Generate PDF analytics reports from the travel platform database",
		SilenceUsage:      true,
		PersistentPreRunE: cli.setup,
	}

	cmd.PersistentFlags().StringVarP(&cli.cfgPath, "config", "c", "", "Path to the config file (default is ./report-atlas.yaml when present)")
	cmd.PersistentFlags().StringVar(&cli.logLevel, "log-level", "", "Log level (overrides logging.level)")
	cmd.PersistentFlags().StringVar(&cli.logFormat, "log-format", "", "Log format: json or console (overrides logging.format)")

	cmd.AddCommand(commands.NewRunCmd(cli.newApp, cli.reporter))
	cmd.AddCommand(commands.NewListCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewHistoryCmd(cli.newApp, cli.reporter))

	return cmd
}

// setup loads .env, then the config, then installs the logger in the command context.
func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	cfg, err := config.Load(cli.cfgPath)
	if err != nil {
		return err
	}
	if cli.logLevel != "" {
		cfg.Logging.Level = cli.logLevel
	}
	if cli.logFormat != "" {
		cfg.Logging.Format = cli.logFormat
	}

	logger, err := cfg.Logging.NewLogger(cli.logOut)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx))
	cli.cfg = cfg
	return nil
}

func (cli *CLI) newApp(ctx context.Context, opts app.Options) (*app.App, error) {
	if cli.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	opts.Config = cli.cfg
	opts.Registry = cli.registry
	return app.New(ctx, opts)
}
