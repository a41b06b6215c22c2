// Package batch manages the lifecycle of asynchronous classification jobs
// against the provider's batch API: encoding requests, submitting them as one
// job, polling status, and reconciling results back into flat rows.
//
// The package is stateless between calls. Job identity and status live on the
// provider side; every operation takes a job id (or a freshly polled Job) and
// returns fresh state.
package batch

import (
	"time"

	openai "github.com/openai/openai-go/v3"

	"github.com/jackzampolin/batchlabel/internal/schema"
)

// Mode selects the classification flavor for a batch.
type Mode string

const (
	ModeSingleLabel       Mode = "single_label"
	ModeMultiLabel        Mode = "multi_label"
	ModeKeywordExtraction Mode = "keyword_extraction"
)

// Valid reports whether the mode is one of the supported batch types.
func (m Mode) Valid() bool {
	switch m {
	case ModeSingleLabel, ModeMultiLabel, ModeKeywordExtraction:
		return true
	}
	return false
}

// JobStatus is the provider-assigned batch status.
type JobStatus string

const (
	StatusValidating JobStatus = "validating"
	StatusInProgress JobStatus = "in_progress"
	StatusCancelling JobStatus = "cancelling"
	StatusFinalizing JobStatus = "finalizing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCancelled  JobStatus = "cancelled"
)

// Ongoing reports whether the job is still moving through the provider's
// pipeline. Cancelling counts as ongoing: the terminal cancelled state only
// shows up on a later poll. Anything not in the ongoing set is done,
// including failure states the caller has never seen before.
func (s JobStatus) Ongoing() bool {
	switch s {
	case StatusValidating, StatusInProgress, StatusCancelling, StatusFinalizing:
		return true
	}
	return false
}

// Terminal reports whether the job has reached a final state.
func (s JobStatus) Terminal() bool {
	return !s.Ongoing()
}

// RequestCounts mirrors the provider's per-job progress counters.
type RequestCounts struct {
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Total     int64 `json:"total"`
}

// Job is a point-in-time snapshot of a provider batch job. It is never
// mutated locally; a fresh snapshot comes from Poll.
type Job struct {
	ID            string            `json:"id"`
	Status        JobStatus         `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	OutputFileID  string            `json:"output_file_id,omitempty"`
	ErrorFileID   string            `json:"error_file_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	RequestCounts RequestCounts     `json:"request_counts"`
}

// Ongoing reports whether the job snapshot is still in flight.
func (j *Job) Ongoing() bool {
	return j.Status.Ongoing()
}

// jobFromBatch converts the SDK batch resource into a Job snapshot.
func jobFromBatch(b *openai.Batch) *Job {
	job := &Job{
		ID:           b.ID,
		Status:       JobStatus(b.Status),
		CreatedAt:    time.Unix(b.CreatedAt, 0).UTC(),
		OutputFileID: b.OutputFileID,
		ErrorFileID:  b.ErrorFileID,
		RequestCounts: RequestCounts{
			Completed: b.RequestCounts.Completed,
			Failed:    b.RequestCounts.Failed,
			Total:     b.RequestCounts.Total,
		},
	}
	if len(b.Metadata) > 0 {
		job.Metadata = make(map[string]string, len(b.Metadata))
		for k, v := range b.Metadata {
			job.Metadata[k] = v
		}
	}
	return job
}

// EncodedRequest is one provider-ready sub-request within a job. The
// correlation id is the only join key between a request and its eventual
// result record.
type EncodedRequest struct {
	CorrelationID string
	ItemText      string
	SystemPrompt  string // optional; keyword extraction sets it
	Prompt        string
	Schema        *schema.Node
}

// ReconciledRow is one flat classification result. A single request may
// expand into several rows (multi-label explode) or none (failures are routed
// to FailureRow instead).
type ReconciledRow struct {
	CorrelationID string   `json:"custom_id"`
	Quote         string   `json:"quote"`
	Label         string   `json:"label"`
	Confidence    *float64 `json:"confidence,omitempty"`
	RepairNote    string   `json:"repair_note,omitempty"`
}

// FailureRow is a sub-response whose content could not be parsed into the
// expected shape even after repair attempts.
type FailureRow struct {
	CorrelationID string `json:"custom_id"`
	Quote         string `json:"quote"`
	RawText       string `json:"raw_text"`
}

// ProviderErrorRow is one flattened per-request error from a failed job's
// error file.
type ProviderErrorRow struct {
	CorrelationID string            `json:"custom_id"`
	Code          string            `json:"code,omitempty"`
	Message       string            `json:"message,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
}
