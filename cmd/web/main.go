package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/de-tools/report-atlas/pkg/metrics"
	"github.com/de-tools/report-atlas/pkg/runtime/app"
	"github.com/de-tools/report-atlas/pkg/server"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/de-tools/report-atlas/pkg/services/pipeline"
	"github.com/de-tools/report-atlas/pkg/services/reports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	host    string
	port    int
)

func main() {
	var rootCmd = &cobra.Command{
		Use:          "web",
		Short:        "Start the web server for Report Atlas",
		SilenceUsage: true,
		RunE:         runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the config file (default is ./report-atlas.yaml when present)")
	rootCmd.Flags().StringVar(&host, "host", "", "Listen host (overrides server.host)")
	rootCmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides server.port)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	logger, err := cfg.Logging.NewLogger(os.Stdout)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	registry := reports.Default()
	a, err := app.New(ctx, app.Options{
		Config:    cfg,
		Registry:  registry,
		Recorders: []pipeline.Recorder{metrics.NewRecorder()},
	})
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close application")
		}
	}()

	logger.Info().Strs("reports", registry.List()).Msg("Reports registered")

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr:            net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Registry: registry,
			Runner:   a,
			History:  a.History,
		},
	})
	return webAPI.Start()
}
