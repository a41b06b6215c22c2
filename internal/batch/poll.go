package batch

import (
	"context"
	"time"

	openai "github.com/openai/openai-go/v3"

	"github.com/jackzampolin/batchlabel/internal/providers"
)

// JobSummary is a compact job view for listings, carrying the human-readable
// metadata attached at submit time.
type JobSummary struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Model     string    `json:"model,omitempty"`
	Type      string    `json:"type,omitempty"`
	Datasets  string    `json:"datasets,omitempty"`
}

// Poll fetches a fresh snapshot of the job. Pure read; safe to call
// repeatedly.
func (s *Service) Poll(ctx context.Context, jobID string) (*Job, error) {
	b, err := s.client.Batches.Get(ctx, jobID)
	if err != nil {
		return nil, &TransportError{Op: OpPoll, JobID: jobID, Err: providers.MapOpenAIError(err)}
	}
	return jobFromBatch(b), nil
}

// ListRecent fetches up to limit recent jobs and splits them into ongoing and
// done. The ongoing/done classification lives on JobStatus so every caller
// agrees on it; "done" covers completed, failed, and cancelled alike.
func (s *Service) ListRecent(ctx context.Context, limit int) (ongoing, done []JobSummary, err error) {
	params := openai.BatchListParams{}
	if limit > 0 {
		params.Limit = openai.Int(int64(limit))
	}

	page, err := s.client.Batches.List(ctx, params)
	if err != nil {
		return nil, nil, &TransportError{Op: OpList, Err: providers.MapOpenAIError(err)}
	}

	for _, b := range page.Data {
		summary := JobSummary{
			ID:        b.ID,
			Status:    JobStatus(b.Status),
			CreatedAt: time.Unix(b.CreatedAt, 0).UTC(),
			Model:     b.Metadata["model"],
			Type:      b.Metadata["type"],
			Datasets:  b.Metadata["dataset(s)"],
		}
		if summary.Status.Ongoing() {
			ongoing = append(ongoing, summary)
		} else {
			done = append(done, summary)
		}
	}

	return ongoing, done, nil
}

// Cancel requests cancellation of the job. Fire-and-forget: the returned
// snapshot typically shows "cancelling", and only a later Poll observes the
// terminal state. No local state changes.
func (s *Service) Cancel(ctx context.Context, jobID string) (*Job, error) {
	b, err := s.client.Batches.Cancel(ctx, jobID)
	if err != nil {
		return nil, &TransportError{Op: OpCancel, JobID: jobID, Err: providers.MapOpenAIError(err)}
	}

	job := jobFromBatch(b)
	s.logger.Info("batch cancellation requested", "job_id", jobID, "status", string(job.Status))
	return job, nil
}
