package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/batchlabel/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running batchlabel server via HTTP.

These commands require a running server (batchlabel serve).
Use --server to specify a custom server URL.

Examples:
  batchlabel api health              # Check server health
  batchlabel api batches list        # List recent batch jobs
  batchlabel api batches get <id>    # Get a specific batch job`,
}

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "Batch job commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))

	// Batches as subcommand group
	for _, ep := range endpoints.BatchCommands() {
		batchesCmd.AddCommand(ep.Command(getServerURL))
	}

	apiCmd.AddCommand(batchesCmd)
	rootCmd.AddCommand(apiCmd)
}
