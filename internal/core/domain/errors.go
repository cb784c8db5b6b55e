package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedKind indicates an unknown entity kind.
	ErrUnsupportedKind = errors.New("unsupported entity kind")

	// ErrNotPartitioned indicates the entity kind is not partitioned by season.
	// Circuits are synced as a full catalog.
	ErrNotPartitioned = errors.New("entity kind is not season partitioned")

	// ErrNoTaskHistory indicates the configured store keeps no scheduler state.
	ErrNoTaskHistory = errors.New("task history not kept by this store")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrStopRequested is returned by the chat loop when the user sends a sentinel message.
	ErrStopRequested = errors.New("stop requested")

	// ErrMissingSecret indicates a required secret is not configured.
	// It is the only error that aborts the process at startup.
	ErrMissingSecret = errors.New("missing required secret")

	// ErrLLMUnavailable indicates the chat model is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Retrieval and embedding regeneration are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// Source Errors.

	// ErrSourceUnavailable indicates the racing data API returned a non-success status.
	// The unit of work (one season) is abandoned.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited indicates an API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrProviderAuth indicates an AI provider rejected the configured credentials.
	ErrProviderAuth = errors.New("provider rejected credentials")

	// ErrMalformedRecord indicates a record failed validation at the parsing boundary.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMalformedVector indicates a stored embedding could not be decoded.
	ErrMalformedVector = errors.New("malformed vector")
)
