package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/batchlabel/internal/config"
	"github.com/jackzampolin/batchlabel/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the batchlabel server",
	Long: `Start the batchlabel HTTP server.

The server exposes batch job submission, polling and reconciliation
over HTTP. Configuration is hot-reloaded when the config file changes.

The server provides:
  - /health       - Basic server health check
  - /ready        - Readiness check (includes provider reachability)
  - /api/batches  - Batch job operations

Examples:
  batchlabel serve                    # Start on default port 8080
  batchlabel serve --port 3000        # Start on custom port
  batchlabel serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := newLogger()

		h, err := loadHome()
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cm, err := loadConfig()
		if err != nil {
			return err
		}
		cm.OnChange(func(c *config.Config) {
			logger.Info("configuration reloaded", "model", c.OpenAI.Model)
		})
		cm.WatchConfig()

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: cm,
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
