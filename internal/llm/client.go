package llm

import (
	"context"
)

// ModelClient is an interface for invoking a hosted chat-completion model.
// This allows mocking in tests without making real API calls.
type ModelClient interface {
	InvokeModel(ctx context.Context, request ModelRequest) (*ModelResponse, error)
}
