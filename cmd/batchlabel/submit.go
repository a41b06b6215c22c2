package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/batchlabel/internal/api"
	"github.com/jackzampolin/batchlabel/internal/batch"
	"github.com/jackzampolin/batchlabel/internal/labels"
)

var (
	submitLabelsFile string
	submitItemsFile  string
	submitMode       string
	submitPrefix     string
	submitDatasets   string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Encode items and submit a new batch job",
	Long: `Encode text items into structured-output requests and submit them
as an asynchronous batch job.

Items are read one per line from --items. Classification modes also
require --labels with one allowed label per line.

Examples:
  batchlabel submit --items quotes.txt --labels labels.txt
  batchlabel submit --items quotes.txt --labels labels.txt --mode multi_label
  batchlabel submit --items notes.txt --mode keyword_extraction`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		svc, cm, err := newService(logger)
		if err != nil {
			return err
		}

		prefix := submitPrefix
		if prefix == "" {
			prefix = cm.Get().Defaults.IDPrefix
		}

		items, err := readLines(submitItemsFile)
		if err != nil {
			return fmt.Errorf("failed to read items: %w", err)
		}

		mode := batch.Mode(submitMode)
		var set labels.Set
		if mode != batch.ModeKeywordExtraction {
			values, err := readLines(submitLabelsFile)
			if err != nil {
				return fmt.Errorf("failed to read labels: %w", err)
			}
			set, err = labels.New(values)
			if err != nil {
				return err
			}
		}

		reqs, err := batch.EncodeBatch(set, items, mode, prefix)
		if err != nil {
			return err
		}

		metadata := map[string]string{"type": string(mode)}
		if submitDatasets != "" {
			metadata["dataset(s)"] = submitDatasets
		}

		job, err := svc.Submit(cmd.Context(), reqs, metadata)
		if err != nil {
			return err
		}

		return api.Output(job)
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitLabelsFile, "labels", "", "File with one allowed label per line")
	submitCmd.Flags().StringVar(&submitItemsFile, "items", "", "File with one text item per line (required)")
	submitCmd.Flags().StringVar(&submitMode, "mode", string(batch.ModeSingleLabel), "Mode: single_label, multi_label, or keyword_extraction")
	submitCmd.Flags().StringVar(&submitPrefix, "prefix", "", "Correlation id prefix override")
	submitCmd.Flags().StringVar(&submitDatasets, "datasets", "", "Dataset names recorded in job metadata")
	submitCmd.MarkFlagRequired("items")

	rootCmd.AddCommand(submitCmd)
}

// readLines reads a file and returns its non-empty trimmed lines.
func readLines(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("no file given")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines, nil
}
