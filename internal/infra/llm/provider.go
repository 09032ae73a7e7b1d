package llm

import "context"

// ChatProvider is the interface the orchestrator drives. Adapters for hosted
// services implement it; tests supply scripted stubs.
type ChatProvider interface {
	// ChatCompletion performs one non-streaming chat completion.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
