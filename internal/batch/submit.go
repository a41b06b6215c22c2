package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"github.com/jackzampolin/batchlabel/internal/providers"
	"github.com/jackzampolin/batchlabel/internal/schema"
)

// Wire shapes for the provider's batch upload format: newline-delimited JSON,
// one object per sub-request.
type uploadLine struct {
	CustomID string      `json:"custom_id"`
	Method   string      `json:"method"`
	URL      string      `json:"url"`
	Body     requestBody `json:"body"`
}

type requestBody struct {
	Model    string            `json:"model"`
	Input    []inputMessage    `json:"input"`
	Text     textFormatWrap    `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type textFormatWrap struct {
	Format textFormat `json:"format"`
}

type textFormat struct {
	Type   string       `json:"type"`
	Name   string       `json:"name"`
	Schema *schema.Node `json:"schema"`
	Strict bool         `json:"strict"`
}

// Submit serializes the encoded requests into one JSONL payload, uploads it,
// and registers the batch job. Either the whole batch becomes one job or
// nothing is created; there is no partial submission state.
//
// Submit is not idempotent: calling it twice creates two distinct jobs. A
// submission_id is stamped into the job metadata so callers can deduplicate.
func (s *Service) Submit(ctx context.Context, reqs []EncodedRequest, metadata map[string]string) (*Job, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyBatch
	}

	payload, err := s.marshalPayload(reqs)
	if err != nil {
		return nil, err
	}

	file, err := s.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(bytes.NewReader(payload), "batchinput.jsonl", "application/jsonl"),
		Purpose: openai.FilePurposeBatch,
	})
	if err != nil {
		return nil, &TransportError{Op: OpUpload, Err: providers.MapOpenAIError(err)}
	}

	meta := make(shared.Metadata, len(metadata)+2)
	for k, v := range metadata {
		meta[k] = v
	}
	meta["model"] = s.model
	if _, ok := meta["submission_id"]; !ok {
		meta["submission_id"] = uuid.NewString()
	}

	created, err := s.client.Batches.New(ctx, openai.BatchNewParams{
		InputFileID:      file.ID,
		Endpoint:         openai.BatchNewParamsEndpoint(responsesEndpoint),
		CompletionWindow: openai.BatchNewParamsCompletionWindow(s.completionWindow),
		Metadata:         meta,
	})
	if err != nil {
		return nil, &TransportError{Op: OpCreate, Err: providers.MapOpenAIError(err)}
	}

	job := jobFromBatch(created)
	s.logger.Info("batch submitted",
		"job_id", job.ID,
		"requests", len(reqs),
		"input_file_id", file.ID,
		"status", string(job.Status))
	return job, nil
}

// marshalPayload builds the newline-delimited upload body, one JSON object
// per request.
func (s *Service) marshalPayload(reqs []EncodedRequest) ([]byte, error) {
	var buf bytes.Buffer
	for _, req := range reqs {
		input := make([]inputMessage, 0, 2)
		if req.SystemPrompt != "" {
			input = append(input, inputMessage{Role: "system", Content: req.SystemPrompt})
		}
		input = append(input, inputMessage{Role: "user", Content: req.Prompt})

		line := uploadLine{
			CustomID: req.CorrelationID,
			Method:   "POST",
			URL:      responsesEndpoint,
			Body: requestBody{
				Model: s.model,
				Input: input,
				Text: textFormatWrap{
					Format: textFormat{
						Type:   "json_schema",
						Name:   req.Schema.Name(),
						Schema: req.Schema,
						Strict: true,
					},
				},
				Metadata: map[string]string{"quote": req.ItemText},
			},
		}

		raw, err := json.Marshal(line)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize request %s: %w", req.CorrelationID, err)
		}
		buf.Write(raw)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
