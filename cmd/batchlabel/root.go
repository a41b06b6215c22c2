package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/batchlabel/internal/api"
	"github.com/jackzampolin/batchlabel/internal/batch"
	"github.com/jackzampolin/batchlabel/internal/config"
	"github.com/jackzampolin/batchlabel/internal/home"
	"github.com/jackzampolin/batchlabel/internal/providers"
	"github.com/jackzampolin/batchlabel/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "batchlabel",
	Short: "Asynchronous text classification via provider batch jobs",
	Long: `Batchlabel submits text classification work to a provider's
asynchronous batch endpoint and reconciles the results when they land.

The lifecycle:
  - Encode items into correlated structured-output requests
  - Submit as a batch job and get back a job id
  - Poll until the job reaches a terminal status
  - Reconcile results, repairing common JSON defects in model output
  - Export classifications and failures to CSV or XLSX`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.batchlabel/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "batchlabel home directory (default: ~/.batchlabel)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger builds the CLI logger.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// loadHome resolves the home directory from the --home flag.
func loadHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// loadConfig builds the config manager, preferring --config and falling
// back to the home directory config when present.
func loadConfig() (*config.Manager, error) {
	path := cfgFile
	if path == "" {
		h, err := loadHome()
		if err != nil {
			return nil, err
		}
		if h.ConfigExists() {
			path = h.ConfigPath()
		}
	}
	return config.NewManager(path)
}

// newService builds a batch service from the resolved configuration.
func newService(logger *slog.Logger) (*batch.Service, *config.Manager, error) {
	cm, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	c := cm.Get()
	client := providers.NewOpenAIClient(c.ToProviderConfig())
	svc := batch.NewService(batch.Config{
		Client:           client,
		Model:            c.OpenAI.Model,
		CompletionWindow: c.OpenAI.CompletionWindow,
		Logger:           logger,
	})
	return svc, cm, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to the home directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := loadHome()
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		if h.ConfigExists() {
			return fmt.Errorf("config already exists at %s", h.ConfigPath())
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", h.ConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
