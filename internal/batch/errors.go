package batch

import (
	"errors"
	"fmt"
)

// Construction errors: caller-input problems detected before any network
// call. Never retried.
var (
	ErrEmptyBatch    = errors.New("batch items are empty")
	ErrEmptyLabelSet = errors.New("label set is required for classification modes")
)

// InvalidModeError indicates an unrecognized batch mode.
type InvalidModeError struct {
	Mode Mode
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("unknown batch mode %q", e.Mode)
}

// DuplicateCorrelationIDError indicates two items produced the same
// correlation id. Sequential numbering makes this unreachable in practice,
// but id uniqueness is a construction invariant, so the encoder checks.
type DuplicateCorrelationIDError struct {
	ID string
}

func (e *DuplicateCorrelationIDError) Error() string {
	return fmt.Sprintf("duplicate correlation id %q in batch", e.ID)
}

// Operation names attached to transport errors.
const (
	OpUpload      = "upload"
	OpCreate      = "create"
	OpPoll        = "poll"
	OpList        = "list"
	OpCancel      = "cancel"
	OpFetchOutput = "fetch_output"
	OpFetchErrors = "fetch_errors"
)

// TransportError wraps a network/API failure talking to the provider with
// enough context (operation, job id) for the caller to decide on retry
// policy. Retries never happen inside this package.
type TransportError struct {
	Op    string
	JobID string
	Err   error
}

func (e *TransportError) Error() string {
	if e.JobID != "" {
		return fmt.Sprintf("%s failed for job %s: %v", e.Op, e.JobID, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Precondition errors: programming mistakes at the call site, reported loudly
// instead of silently no-opping.
var (
	ErrJobNotCompleted = errors.New("reconcile requires a completed job with an output file")
	ErrJobNotFailed    = errors.New("failure report requires a failed job with an error file")
)
