package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"revpulse/internal/app"
	"revpulse/internal/infrastructure"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report API, live WebSocket updates and metrics",
		Long: `Start the HTTP server.

Endpoints:
  /api/report, /api/filters, /api/transactions, /api/sources, /api/cache
  /api/export/{csv,xlsx}, POST /api/reload
  /api/health, /api/health/ready, /api/version
  /ws/report (live snapshots), /metrics (Prometheus)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			logger, err := infrastructure.InitializeLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer infrastructure.CloseLogFile()

			application, err := app.New(cfg, logger)
			if err != nil {
				logger.Error("Failed to initialize application", slog.String("error", err.Error()))
				return err
			}
			return application.Run()
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}
