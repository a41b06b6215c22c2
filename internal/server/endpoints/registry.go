package endpoints

import (
	"github.com/jackzampolin/batchlabel/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},

		// Batch job endpoints
		&SubmitBatchEndpoint{},
		&ListBatchesEndpoint{},
		&GetBatchEndpoint{},
		&CancelBatchEndpoint{},
		&BatchResultsEndpoint{},
		&BatchErrorsEndpoint{},
	}
}

// BatchCommands returns the endpoints that operate on batch jobs.
// This groups batch-related commands under the "batches" subcommand.
func BatchCommands() []api.Endpoint {
	return []api.Endpoint{
		&SubmitBatchEndpoint{},
		&ListBatchesEndpoint{},
		&GetBatchEndpoint{},
		&CancelBatchEndpoint{},
		&BatchResultsEndpoint{},
		&BatchErrorsEndpoint{},
	}
}
