package batch

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/openai/openai-go/v3"

	"github.com/jackzampolin/batchlabel/internal/providers"
)

const (
	defaultModel            = "gpt-4o"
	defaultCompletionWindow = "24h"

	// Every request in a batch targets the provider's Responses endpoint.
	responsesEndpoint = "/v1/responses"
)

// Config holds configuration for the batch service.
type Config struct {
	// Client is the provider client, constructed once at startup
	// (providers.NewOpenAIClient) and shared.
	Client openai.Client

	// Model is the model id stamped into every sub-request.
	Model string

	// CompletionWindow is the provider-side deadline for the whole job.
	CompletionWindow string

	// Logger is the structured logger to use.
	Logger *slog.Logger
}

// Service drives batch jobs against the provider. It holds no job state;
// concurrent calls for different job ids share nothing mutable.
type Service struct {
	client           openai.Client
	model            string
	completionWindow string
	logger           *slog.Logger
}

// NewService creates a batch service.
func NewService(cfg Config) *Service {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.CompletionWindow == "" {
		cfg.CompletionWindow = defaultCompletionWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{
		client:           cfg.Client,
		model:            cfg.Model,
		completionWindow: cfg.CompletionWindow,
		logger:           cfg.Logger,
	}
}

// Model returns the configured model id.
func (s *Service) Model() string {
	return s.model
}

// Ping verifies the provider API is reachable and the API key is valid.
func (s *Service) Ping(ctx context.Context) error {
	page, err := s.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("openai models list failed: %w", providers.MapOpenAIError(err))
	}
	if page == nil {
		return fmt.Errorf("openai models list returned nil response")
	}
	return nil
}
