package endpoints

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/batchlabel/internal/api"
	"github.com/jackzampolin/batchlabel/internal/batch"
	"github.com/jackzampolin/batchlabel/internal/svcctx"
)

// ListBatchesResponse is the response for listing recent batch jobs.
type ListBatchesResponse struct {
	Ongoing []batch.JobSummary `json:"ongoing"`
	Done    []batch.JobSummary `json:"done"`
}

// ListBatchesEndpoint handles GET /api/batches.
type ListBatchesEndpoint struct{}

func (e *ListBatchesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/batches", e.handler
}

func (e *ListBatchesEndpoint) RequiresInit() bool { return true }

func (e *ListBatchesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc := svcctx.BatchFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "batch service not initialized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit == 0 {
		if cm := svcctx.ConfigFrom(r.Context()); cm != nil {
			limit = cm.Get().Defaults.MaxBatches
		}
	}

	ongoing, done, err := svc.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ListBatchesResponse{Ongoing: ongoing, Done: done})
}

func (e *ListBatchesEndpoint) Command(getServerURL func() string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent batch jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/batches"
			if limit > 0 {
				params := url.Values{}
				params.Set("limit", strconv.Itoa(limit))
				path += "?" + params.Encode()
			}

			client := api.NewClient(getServerURL())
			var resp ListBatchesResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of jobs to list")
	return cmd
}

// GetBatchResponse is the response for getting a single batch job.
type GetBatchResponse struct {
	Job *batch.Job `json:"job"`
}

// GetBatchEndpoint handles GET /api/batches/{id}.
type GetBatchEndpoint struct{}

func (e *GetBatchEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/batches/{id}", e.handler
}

func (e *GetBatchEndpoint) RequiresInit() bool { return true }

func (e *GetBatchEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, GetBatchResponse{Job: job})
}

func (e *GetBatchEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <job-id>",
		Short: "Get a batch job's current status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp GetBatchResponse
			if err := client.Get(cmd.Context(), "/api/batches/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// CancelBatchEndpoint handles POST /api/batches/{id}/cancel.
type CancelBatchEndpoint struct{}

func (e *CancelBatchEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/batches/{id}/cancel", e.handler
}

func (e *CancelBatchEndpoint) RequiresInit() bool { return true }

func (e *CancelBatchEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc := svcctx.BatchFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "batch service not initialized")
		return
	}

	job, err := svc.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, GetBatchResponse{Job: job})
}

func (e *CancelBatchEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Request cancellation of a batch job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp GetBatchResponse
			if err := client.Post(cmd.Context(), "/api/batches/"+args[0]+"/cancel", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
