package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/batchlabel/internal/api"
	"github.com/jackzampolin/batchlabel/internal/batch"
	"github.com/jackzampolin/batchlabel/internal/labels"
	"github.com/jackzampolin/batchlabel/internal/svcctx"
)

// SubmitRequest is the request body for submitting a new batch job.
type SubmitRequest struct {
	Labels   []string `json:"labels,omitempty"`
	Items    []string `json:"items"`
	Mode     string   `json:"mode"`
	Prefix   string   `json:"prefix,omitempty"`
	Datasets string   `json:"datasets,omitempty"`
}

// SubmitResponse is the response for a submitted batch job.
type SubmitResponse struct {
	Job *batch.Job `json:"job"`
}

// SubmitBatchEndpoint handles POST /api/batches.
type SubmitBatchEndpoint struct{}

func (e *SubmitBatchEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/batches", e.handler
}

func (e *SubmitBatchEndpoint) RequiresInit() bool { return true }

func (e *SubmitBatchEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc := svcctx.BatchFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "batch service not initialized")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	mode := batch.Mode(req.Mode)
	var set labels.Set
	if mode != batch.ModeKeywordExtraction {
		var err error
		set, err = labels.New(req.Labels)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	reqs, err := batch.EncodeBatch(set, req.Items, mode, req.Prefix)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	metadata := map[string]string{"type": string(mode)}
	if req.Datasets != "" {
		metadata["dataset(s)"] = req.Datasets
	}

	job, err := svc.Submit(r.Context(), reqs, metadata)
	if err != nil {
		var te *batch.TransportError
		if errors.As(err, &te) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, SubmitResponse{Job: job})
}

func (e *SubmitBatchEndpoint) Command(getServerURL func() string) *cobra.Command {
	var labelsFile, itemsFile, mode, prefix, datasets string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new classification batch job",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readLines(itemsFile)
			if err != nil {
				return err
			}

			req := SubmitRequest{
				Items:    items,
				Mode:     mode,
				Prefix:   prefix,
				Datasets: datasets,
			}
			if labelsFile != "" {
				req.Labels, err = readLines(labelsFile)
				if err != nil {
					return err
				}
			}

			client := api.NewClient(getServerURL())
			var resp SubmitResponse
			if err := client.Post(cmd.Context(), "/api/batches", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&labelsFile, "labels", "", "File with one allowed label per line")
	cmd.Flags().StringVar(&itemsFile, "items", "", "File with one text item per line (required)")
	cmd.Flags().StringVar(&mode, "mode", string(batch.ModeSingleLabel), "Classification mode: single_label, multi_label, or keyword_extraction")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Correlation id prefix override")
	cmd.Flags().StringVar(&datasets, "datasets", "", "Dataset names recorded in job metadata")
	cmd.MarkFlagRequired("items")
	return cmd
}

// readLines reads a file and returns its non-empty lines.
func readLines(path string) ([]string, error) {
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
