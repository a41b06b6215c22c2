package main

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/batchlabel/internal/api"
	"github.com/jackzampolin/batchlabel/internal/batch"
)

var jobsLimit int

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List and inspect batch jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent batch jobs grouped by ongoing and done",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		svc, cm, err := newService(logger)
		if err != nil {
			return err
		}

		limit := jobsLimit
		if limit == 0 {
			limit = cm.Get().Defaults.MaxBatches
		}

		ongoing, done, err := svc.ListRecent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		loc := loadLocation(cm.Get().Defaults.TimeZone)

		fmt.Println("Ongoing:")
		renderJobTable(ongoing, loc)
		fmt.Println("\nDone:")
		renderJobTable(done, loc)
		return nil
	},
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show a batch job's current status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		svc, _, err := newService(logger)
		if err != nil {
			return err
		}

		job, err := svc.Poll(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return api.Output(job)
	},
}

var jobsCancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Request cancellation of a batch job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		svc, _, err := newService(logger)
		if err != nil {
			return err
		}

		job, err := svc.Cancel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return api.Output(job)
	},
}

// loadLocation resolves a timezone name, falling back to UTC.
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// renderJobTable prints job summaries with creation times in the given zone.
func renderJobTable(jobs []batch.JobSummary, loc *time.Location) {
	if len(jobs) == 0 {
		fmt.Println("  (none)")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Status", "Created", "Model", "Type", "Datasets")
	for _, j := range jobs {
		created := j.CreatedAt.In(loc).Format("2006-01-02 15:04 MST")
		table.Append([]string{j.ID, string(j.Status), created, j.Model, j.Type, j.Datasets})
	}
	table.Render()
}

func init() {
	jobsListCmd.Flags().IntVar(&jobsLimit, "limit", 0, "Maximum number of jobs to list (default from config)")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsStatusCmd)
	jobsCmd.AddCommand(jobsCancelCmd)
	rootCmd.AddCommand(jobsCmd)
}
