package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackzampolin/batchlabel/internal/providers"
)

// rawSnippetLen bounds the diagnostic text carried on failure rows.
const rawSnippetLen = 80

// Envelope shapes for the provider's output file: one JSON record per line,
// wrapping the original custom_id and the Responses API body.
type outputRecord struct {
	CustomID string        `json:"custom_id"`
	Response *responseWrap `json:"response"`
}

type responseWrap struct {
	StatusCode int         `json:"status_code"`
	Body       *outputBody `json:"body"`
}

type outputBody struct {
	Output   []outputItem      `json:"output"`
	Metadata map[string]string `json:"metadata"`
}

type outputItem struct {
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type string  `json:"type"`
	// Pointer so a structurally missing text field is distinguishable from
	// an empty one; only the former is a format failure.
	Text *string `json:"text"`
}

// Reconcile downloads the completed job's output and turns it into flat
// result rows plus content-failure rows. Calling it with a job that is not
// completed (or has no output file) is a programming error and fails fast.
//
// Output records arrive in no particular order; the correlation id is the
// only join key back to the submitted items. One bad record never aborts the
// rest of the batch.
func (s *Service) Reconcile(ctx context.Context, job *Job) ([]ReconciledRow, []FailureRow, error) {
	if job == nil || job.Status != StatusCompleted || job.OutputFileID == "" {
		status := JobStatus("")
		if job != nil {
			status = job.Status
		}
		return nil, nil, fmt.Errorf("%w (status %q)", ErrJobNotCompleted, status)
	}

	data, err := s.fetchFile(ctx, job.OutputFileID, OpFetchOutput, job.ID)
	if err != nil {
		return nil, nil, err
	}

	rows, failures := reconcileOutput(data, s.logger.With("job_id", job.ID))
	s.logger.Info("batch reconciled",
		"job_id", job.ID,
		"rows", len(rows),
		"failures", len(failures))
	return rows, failures, nil
}

// fetchFile downloads a provider file's raw content.
func (s *Service) fetchFile(ctx context.Context, fileID, op, jobID string) ([]byte, error) {
	resp, err := s.client.Files.Content(ctx, fileID)
	if err != nil {
		return nil, &TransportError{Op: op, JobID: jobID, Err: providers.MapOpenAIError(err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, JobID: jobID, Err: err}
	}
	return data, nil
}

// reconcileOutput is the pure core of reconciliation: it walks the
// newline-delimited records and separates usable rows from failures.
//
// Two failure kinds are kept apart on purpose. A format failure (the record
// or envelope doesn't have the expected shape) points at a provider change
// or a bug here, so it is logged and skipped without polluting the
// user-facing failure table. A content failure (the model's text can't be
// parsed even after repair) is exactly what the user needs to see, so it
// becomes a FailureRow.
func reconcileOutput(data []byte, logger *slog.Logger) ([]ReconciledRow, []FailureRow) {
	var rows []ReconciledRow
	var failures []FailureRow

	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var rec outputRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			logger.Warn("skipping unparseable output record", "error", err)
			continue
		}

		text, ok := envelopeText(&rec)
		if !ok {
			logger.Warn("skipping output record with missing text field", "custom_id", rec.CustomID)
			continue
		}

		quote := ""
		if rec.Response.Body.Metadata != nil {
			quote = rec.Response.Body.Metadata["quote"]
		}

		parsed, note, ok := parseModelText(text)
		if !ok {
			failures = append(failures, FailureRow{
				CorrelationID: rec.CustomID,
				Quote:         quote,
				RawText:       rawSnippet(text, rawSnippetLen),
			})
			continue
		}

		recRows, ok := rowsFromParsed(rec.CustomID, quote, parsed, note)
		if !ok {
			failures = append(failures, FailureRow{
				CorrelationID: rec.CustomID,
				Quote:         quote,
				RawText:       rawSnippet(text, rawSnippetLen),
			})
			continue
		}
		rows = append(rows, recRows...)
	}

	return rows, failures
}

// envelopeText locates the model's textual output inside the response
// envelope. ok=false means the field is structurally absent.
func envelopeText(rec *outputRecord) (string, bool) {
	if rec.Response == nil || rec.Response.Body == nil {
		return "", false
	}
	body := rec.Response.Body
	if len(body.Output) == 0 || len(body.Output[0].Content) == 0 {
		return "", false
	}
	part := body.Output[0].Content[0]
	if part.Text == nil {
		return "", false
	}
	return *part.Text, true
}

// rowsFromParsed flattens one parsed result into rows. Array-valued labels
// and keywords explode into one row per element; null or empty elements are
// dropped rather than emitted as blank rows. ok=false means the parsed
// object had no usable label or keyword field at all.
func rowsFromParsed(customID, quote string, parsed map[string]any, note string) ([]ReconciledRow, bool) {
	var confidence *float64
	if c, ok := parsed["confidence"].(float64); ok {
		confidence = &c
	}

	row := func(label string) ReconciledRow {
		return ReconciledRow{
			CorrelationID: customID,
			Quote:         quote,
			Label:         label,
			Confidence:    confidence,
			RepairNote:    note,
		}
	}

	switch v := parsed["label"].(type) {
	case string:
		return []ReconciledRow{row(v)}, true
	case []any:
		var rows []ReconciledRow
		for _, elem := range v {
			if s, ok := elem.(string); ok && s != "" {
				rows = append(rows, row(s))
			}
		}
		return rows, true
	}

	if v, ok := parsed["keywords"].([]any); ok {
		var rows []ReconciledRow
		for _, elem := range v {
			if s, ok := elem.(string); ok && s != "" {
				rows = append(rows, row(s))
			}
		}
		return rows, true
	}

	return nil, false
}
