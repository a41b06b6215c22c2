package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/jackzampolin/batchlabel/internal/providers"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := providers.NewOpenAIClient(providers.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	return NewService(Config{Client: client, Model: "gpt-4o", Logger: discardLogger()})
}

func batchJSON(id, status string, extra map[string]any) string {
	doc := map[string]any{
		"id":                id,
		"object":            "batch",
		"endpoint":          "/v1/responses",
		"completion_window": "24h",
		"status":            status,
		"created_at":        1700000000,
	}
	for k, v := range extra {
		doc[k] = v
	}
	raw, _ := json.Marshal(doc)
	return string(raw)
}

func TestSubmitUploadsJSONLAndCreatesJob(t *testing.T) {
	var uploadedPayload string
	var createReq map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("POST /files", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("purpose"); got != "batch" {
			t.Fatalf("purpose = %q, want batch", got)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		data, _ := io.ReadAll(f)
		uploadedPayload = string(data)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"file-abc","object":"file","purpose":"batch","filename":"batchinput.jsonl"}`)
	})
	mux.HandleFunc("POST /batches", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
			t.Fatalf("decode create request: %v", err)
		}
		meta, _ := createReq["metadata"].(map[string]any)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, batchJSON("batch_1", "validating", map[string]any{
			"input_file_id": "file-abc",
			"metadata":      meta,
		}))
	})

	svc := newTestService(t, mux)

	set := mustLabels(t, "joy", "anger")
	reqs, err := EncodeBatch(set, []string{"first quote", "second quote"}, ModeSingleLabel, "")
	if err != nil {
		t.Fatalf("EncodeBatch() error = %v", err)
	}

	job, err := svc.Submit(context.Background(), reqs, map[string]string{
		"type":       string(ModeSingleLabel),
		"dataset(s)": "labels + quotes",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if job.ID != "batch_1" || job.Status != StatusValidating {
		t.Fatalf("unexpected job snapshot: %+v", job)
	}
	if !job.Ongoing() {
		t.Fatal("freshly submitted job must classify as ongoing")
	}

	// One JSON object per line, wire fields in place.
	lines := strings.Split(strings.TrimSpace(uploadedPayload), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 payload lines, got %d", len(lines))
	}
	var line uploadLine
	if err := json.Unmarshal([]byte(lines[0]), &line); err != nil {
		t.Fatalf("unmarshal payload line: %v", err)
	}
	if line.CustomID != "quote-00001" || line.Method != "POST" || line.URL != "/v1/responses" {
		t.Fatalf("unexpected payload line: %+v", line)
	}
	if line.Body.Model != "gpt-4o" {
		t.Fatalf("model not stamped into request body: %q", line.Body.Model)
	}
	if line.Body.Metadata["quote"] != "first quote" {
		t.Fatalf("item text not carried in request metadata: %+v", line.Body.Metadata)
	}
	if line.Body.Text.Format.Type != "json_schema" || !line.Body.Text.Format.Strict {
		t.Fatalf("structured output format missing: %+v", line.Body.Text.Format)
	}

	if got, _ := createReq["input_file_id"].(string); got != "file-abc" {
		t.Fatalf("batch not created from uploaded file: %v", createReq["input_file_id"])
	}
	meta, _ := createReq["metadata"].(map[string]any)
	if meta["model"] != "gpt-4o" || meta["type"] != "single_label" {
		t.Fatalf("metadata not attached: %#v", meta)
	}
	if sid, _ := meta["submission_id"].(string); sid == "" {
		t.Fatal("submission id missing from metadata")
	}
}

func TestSubmitEmptyRequests(t *testing.T) {
	svc := newTestService(t, http.NewServeMux())
	if _, err := svc.Submit(context.Background(), nil, nil); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestSubmitUploadFailureIsTransportError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /files", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"upload exploded"}}`)
	})

	svc := newTestService(t, mux)
	set := mustLabels(t, "joy")
	reqs, _ := EncodeBatch(set, []string{"q"}, ModeSingleLabel, "")

	_, err := svc.Submit(context.Background(), reqs, nil)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if te.Op != OpUpload {
		t.Fatalf("op = %q, want %q", te.Op, OpUpload)
	}
}

func TestPollIsIdempotent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /batches/batch_1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, batchJSON("batch_1", "in_progress", map[string]any{
			"request_counts": map[string]int{"completed": 3, "failed": 0, "total": 10},
		}))
	})

	svc := newTestService(t, mux)

	first, err := svc.Poll(context.Background(), "batch_1")
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	second, err := svc.Poll(context.Background(), "batch_1")
	if err != nil {
		t.Fatalf("Poll() second call error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("poll snapshots differ with no provider-side change:\n%+v\n%+v", first, second)
	}
	if first.RequestCounts.Completed != 3 || first.RequestCounts.Total != 10 {
		t.Fatalf("request counts not carried: %+v", first.RequestCounts)
	}
}

func TestPollErrorCarriesJobID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /batches/batch_404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"message":"no such batch"}}`)
	})

	svc := newTestService(t, mux)
	_, err := svc.Poll(context.Background(), "batch_404")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Op != OpPoll || te.JobID != "batch_404" {
		t.Fatalf("transport error context missing: %+v", te)
	}
}

func TestListRecentSplitsOngoingAndDone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /batches", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "4" {
			t.Fatalf("limit param = %q, want 4", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"object":"list","has_more":false,"data":[%s,%s,%s]}`,
			batchJSON("batch_a", "in_progress", map[string]any{
				"metadata": map[string]string{"model": "gpt-4o", "type": "single_label", "dataset(s)": "labels + quotes"},
			}),
			batchJSON("batch_b", "completed", nil),
			batchJSON("batch_c", "cancelled", nil),
		)
	})

	svc := newTestService(t, mux)
	ongoing, done, err := svc.ListRecent(context.Background(), 4)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}

	if len(ongoing) != 1 || ongoing[0].ID != "batch_a" {
		t.Fatalf("unexpected ongoing set: %+v", ongoing)
	}
	if ongoing[0].Model != "gpt-4o" || ongoing[0].Type != "single_label" || ongoing[0].Datasets != "labels + quotes" {
		t.Fatalf("metadata not surfaced on summary: %+v", ongoing[0])
	}
	if len(done) != 2 {
		t.Fatalf("unexpected done set: %+v", done)
	}
}

func TestCancelReturnsFreshSnapshot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /batches/batch_1/cancel", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, batchJSON("batch_1", "cancelling", nil))
	})

	svc := newTestService(t, mux)
	job, err := svc.Cancel(context.Background(), "batch_1")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	// Cancellation is observed on a later poll; the snapshot is still ongoing.
	if job.Status != StatusCancelling || !job.Ongoing() {
		t.Fatalf("unexpected snapshot after cancel: %+v", job)
	}
}

func TestReconcileFetchesOutputFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /files/file_out/content", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, outputLine(t, "quote-00001", "the quote", `{"label":"joy"}`))
	})

	svc := newTestService(t, mux)
	job := &Job{ID: "batch_1", Status: StatusCompleted, OutputFileID: "file_out"}

	rows, failures, err := svc.Reconcile(context.Background(), job)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(failures) != 0 || len(rows) != 1 || rows[0].Label != "joy" {
		t.Fatalf("unexpected reconciliation: rows=%+v failures=%+v", rows, failures)
	}
}

func TestReconcilePreconditions(t *testing.T) {
	svc := newTestService(t, http.NewServeMux())

	_, _, err := svc.Reconcile(context.Background(), &Job{ID: "batch_1", Status: StatusInProgress})
	if !errors.Is(err, ErrJobNotCompleted) {
		t.Fatalf("expected ErrJobNotCompleted, got %v", err)
	}

	_, _, err = svc.Reconcile(context.Background(), &Job{ID: "batch_1", Status: StatusCompleted})
	if !errors.Is(err, ErrJobNotCompleted) {
		t.Fatalf("completed job without output file must fail fast, got %v", err)
	}
}

func TestReportFailuresFlattensErrorFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /files/file_err/content", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"custom_id":"quote-00001","response":{"status_code":400,"body":{"error":{"code":"invalid_request","message":"too long","param":"input"}}}}`)
		fmt.Fprintln(w, `{"custom_id":"quote-00002","response":{"status_code":429,"body":{"error":{"code":"rate_limited","message":"slow down"}}}}`)
	})

	svc := newTestService(t, mux)
	job := &Job{ID: "batch_1", Status: StatusFailed, ErrorFileID: "file_err"}

	rows, err := svc.ReportFailures(context.Background(), job)
	if err != nil {
		t.Fatalf("ReportFailures() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 error rows, got %d", len(rows))
	}
	if rows[0].Code != "invalid_request" || rows[0].Message != "too long" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[0].Fields["param"] != "input" {
		t.Fatalf("provider-specific field lost: %+v", rows[0].Fields)
	}
}

func TestReportFailuresPreconditions(t *testing.T) {
	svc := newTestService(t, http.NewServeMux())

	_, err := svc.ReportFailures(context.Background(), &Job{ID: "b", Status: StatusCompleted})
	if !errors.Is(err, ErrJobNotFailed) {
		t.Fatalf("expected ErrJobNotFailed, got %v", err)
	}
}
