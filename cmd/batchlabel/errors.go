package main

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/batchlabel/internal/api"
	"github.com/jackzampolin/batchlabel/internal/batch"
)

var errorsTable bool

var errorsCmd = &cobra.Command{
	Use:   "errors <job-id>",
	Short: "Report per-request errors of a failed batch job",
	Long: `Fetch the error file of a failed batch job and flatten its
records into per-request error rows (correlation id, code, message).`,
	Args: cobra.ExactArgs(1),
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

		rows, err := svc.ReportFailures(cmd.Context(), job)
		if err != nil {
			return err
		}

		if errorsTable {
			renderErrorTable(rows)
			return nil
		}
		return api.Output(rows)
	},
}

func renderErrorTable(rows []batch.ProviderErrorRow) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Code", "Message")
	for _, row := range rows {
		table.Append([]string{row.CorrelationID, row.Code, row.Message})
	}
	table.Render()
}

func init() {
	errorsCmd.Flags().BoolVar(&errorsTable, "table", false, "Render errors as a table instead of structured output")

	rootCmd.AddCommand(errorsCmd)
}
