package main

import (
	"fmt"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/batchlabel/internal/api"
	"github.com/jackzampolin/batchlabel/internal/batch"
	"github.com/jackzampolin/batchlabel/internal/export"
)

var (
	resultsWait     bool
	resultsInterval time.Duration
	resultsFormat   string
	resultsOut      string
)

var resultsCmd = &cobra.Command{
	Use:   "results <job-id>",
	Short: "Fetch and reconcile results of a completed batch job",
	Long: `Fetch the output file of a completed batch job and reconcile it
into labeled rows. Malformed model output is repaired where possible;
unusable rows are reported as failures.

With --wait the command polls until the job reaches a terminal status
before reconciling.

Examples:
  batchlabel results batch_abc123
  batchlabel results batch_abc123 --wait
  batchlabel results batch_abc123 --format csv
  batchlabel results batch_abc123 --format xlsx --out ./out`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()
		svc, _, err := newService(logger)
		if err != nil {
			return err
		}

		jobID := args[0]
		job, err := svc.Poll(ctx, jobID)
		if err != nil {
			return err
		}

		if resultsWait && job.Ongoing() {
			job, err = waitForTerminal(cmd, svc, jobID)
			if err != nil {
				return err
			}
		}

		if job.Status == batch.StatusFailed {
			return fmt.Errorf("job %s failed; run 'batchlabel errors %s' for details", jobID, jobID)
		}

		rows, failures, err := svc.Reconcile(ctx, job)
		if err != nil {
			return err
		}

		if resultsFormat == "" {
			return api.Output(struct {
				Rows     []batch.ReconciledRow `json:"rows"`
				Failures []batch.FailureRow    `json:"failures,omitempty"`
			}{Rows: rows, Failures: failures})
		}

		return writeExports(jobID, rows, failures)
	},
}

// waitForTerminal polls the job until it leaves the ongoing statuses.
func waitForTerminal(cmd *cobra.Command, svc *batch.Service, jobID string) (*batch.Job, error) {
	var job *batch.Job
	err := retry.Do(
		func() error {
			var err error
			job, err = svc.Poll(cmd.Context(), jobID)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if job.Ongoing() {
				return fmt.Errorf("job %s still %s", jobID, job.Status)
			}
			return nil
		},
		retry.Context(cmd.Context()),
		retry.Attempts(0), // poll until the context is cancelled
		retry.Delay(resultsInterval),
		retry.DelayType(retry.FixedDelay),
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// writeExports writes reconciled rows to the requested format, either in
// the directory given by --out or in the home exports directory.
func writeExports(jobID string, rows []batch.ReconciledRow, failures []batch.FailureRow) error {
	outDir := resultsOut
	if outDir == "" {
		h, err := loadHome()
		if err != nil {
			return err
		}
		if err := h.EnsureJobExportsDir(jobID); err != nil {
			return err
		}
		outDir = h.JobExportsDir(jobID)
	} else if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	switch resultsFormat {
	case "csv":
		path := outDir + "/" + export.ClassificationsFileName
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteResultsCSV(f, rows); err != nil {
			return err
		}
		fmt.Printf("Wrote %d rows to %s\n", len(rows), path)

		if len(failures) > 0 {
			failPath := outDir + "/" + export.ErrorsFileName
			ff, err := os.Create(failPath)
			if err != nil {
				return err
			}
			defer ff.Close()
			if err := export.WriteFailuresCSV(ff, failures); err != nil {
				return err
			}
			fmt.Printf("Wrote %d failures to %s\n", len(failures), failPath)
		}
		return nil

	case "xlsx":
		data, err := export.ResultsXLSX(rows, failures)
		if err != nil {
			return err
		}
		name, err := export.ResultsFileName("xlsx")
		if err != nil {
			return err
		}
		path := outDir + "/" + name
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %d rows (%d failures) to %s\n", len(rows), len(failures), path)
		return nil

	default:
		return fmt.Errorf("unknown export format: %s (want csv or xlsx)", resultsFormat)
	}
}

func init() {
	resultsCmd.Flags().BoolVar(&resultsWait, "wait", false, "Poll until the job reaches a terminal status")
	resultsCmd.Flags().DurationVar(&resultsInterval, "interval", 30*time.Second, "Polling interval used with --wait")
	resultsCmd.Flags().StringVar(&resultsFormat, "format", "", "Export format: csv or xlsx (default: structured output)")
	resultsCmd.Flags().StringVar(&resultsOut, "out", "", "Export directory (default: home exports directory)")

	rootCmd.AddCommand(resultsCmd)
}
