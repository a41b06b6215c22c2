package endpoints

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/batchlabel/internal/api"
	"github.com/jackzampolin/batchlabel/internal/batch"
	"github.com/jackzampolin/batchlabel/internal/svcctx"
)

// ResultsResponse is the response for reconciled batch results.
type ResultsResponse struct {
	Rows     []batch.ReconciledRow `json:"rows"`
	Failures []batch.FailureRow    `json:"failures"`
}

// BatchResultsEndpoint handles GET /api/batches/{id}/results.
type BatchResultsEndpoint struct{}

func (e *BatchResultsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/batches/{id}/results", e.handler
}

func (e *BatchResultsEndpoint) RequiresInit() bool { return true }

func (e *BatchResultsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc := svcctx.BatchFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "batch service not initialized")
		return
	}

	job, err := svc.Poll(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	rows, failures, err := svc.Reconcile(r.Context(), job)
	if err != nil {
		if errors.Is(err, batch.ErrJobNotCompleted) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ResultsResponse{Rows: rows, Failures: failures})
}

func (e *BatchResultsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "results <job-id>",
		Short: "Fetch and reconcile results of a completed batch job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ResultsResponse
			if err := client.Get(cmd.Context(), "/api/batches/"+args[0]+"/results", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// BatchErrorsResponse is the response for provider error reports.
type BatchErrorsResponse struct {
	Errors []batch.ProviderErrorRow `json:"errors"`
}

// BatchErrorsEndpoint handles GET /api/batches/{id}/errors.
type BatchErrorsEndpoint struct{}

func (e *BatchErrorsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/batches/{id}/errors", e.handler
}

func (e *BatchErrorsEndpoint) RequiresInit() bool { return true }

func (e *BatchErrorsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc := svcctx.BatchFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "batch service not initialized")
		return
	}

	job, err := svc.Poll(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	rows, err := svc.ReportFailures(r.Context(), job)
	if err != nil {
		if errors.Is(err, batch.ErrJobNotFailed) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, BatchErrorsResponse{Errors: rows})
}

func (e *BatchErrorsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "errors <job-id>",
		Short: "Report per-request errors of a failed batch job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp BatchErrorsResponse
			if err := client.Get(cmd.Context(), "/api/batches/"+args[0]+"/errors", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
