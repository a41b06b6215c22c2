package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// errorRecord is one line of the provider's error file: same envelope as the
// output file but the body carries an error object instead of a result.
type errorRecord struct {
	CustomID string `json:"custom_id"`
	Response *struct {
		StatusCode int `json:"status_code"`
		Body       *struct {
			Error map[string]any `json:"error"`
		} `json:"body"`
	} `json:"response"`
}

// ReportFailures downloads a failed job's error file and flattens each
// per-request error into a row for tabular export. Much simpler than
// reconciliation: provider errors are structured, so nothing needs guessing.
//
// Calling it with a job that is not failed (or has no error file) is a
// programming error and fails fast. Job failure itself is a status value,
// not an error.
func (s *Service) ReportFailures(ctx context.Context, job *Job) ([]ProviderErrorRow, error) {
	if job == nil || job.Status != StatusFailed || job.ErrorFileID == "" {
		status := JobStatus("")
		if job != nil {
			status = job.Status
		}
		return nil, fmt.Errorf("%w (status %q)", ErrJobNotFailed, status)
	}

	data, err := s.fetchFile(ctx, job.ErrorFileID, OpFetchErrors, job.ID)
	if err != nil {
		return nil, err
	}

	rows := flattenErrorRecords(data, s.logger.With("job_id", job.ID))
	s.logger.Info("batch failure report built", "job_id", job.ID, "errors", len(rows))
	return rows, nil
}

// flattenErrorRecords parses the newline-delimited error file. Records that
// don't carry an error object are logged and skipped; they never abort the
// report.
func flattenErrorRecords(data []byte, logger *slog.Logger) []ProviderErrorRow {
	var rows []ProviderErrorRow

	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var rec errorRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			logger.Warn("skipping unparseable error record", "error", err)
			continue
		}
		if rec.Response == nil || rec.Response.Body == nil || rec.Response.Body.Error == nil {
			logger.Warn("skipping error record with no error object", "custom_id", rec.CustomID)
			continue
		}

		row := ProviderErrorRow{CorrelationID: rec.CustomID}
		for k, v := range rec.Response.Body.Error {
			switch k {
			case "code":
				row.Code = fmt.Sprint(v)
			case "message":
				row.Message = fmt.Sprint(v)
			default:
				if row.Fields == nil {
					row.Fields = make(map[string]string)
				}
				row.Fields[k] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}

	return rows
}
