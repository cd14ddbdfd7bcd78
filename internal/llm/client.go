package llm

import (
	"context"
)

// LLMClient is the completion interface the judge depends on.
// This allows mocking in tests without making real API calls.
type LLMClient interface {
	CreateCompletion(ctx context.Context, request CompletionRequest) (*CompletionResponse, error)
}

// StructuredCompleter is implemented by clients that can constrain the reply
// to a single JSON object.
type StructuredCompleter interface {
	CreateStructuredCompletion(ctx context.Context, request CompletionRequest) (*CompletionResponse, error)
}

// BatchClient submits many completions as one discounted asynchronous job.
type BatchClient interface {
	Submit(ctx context.Context, requests []BatchRequest) (string, error)
	PollStatus(ctx context.Context, jobID string) (BatchCounts, error)
	FetchResults(ctx context.Context, jobID string) (map[string]BatchResult, error)
}
