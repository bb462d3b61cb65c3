package domain

import "context"

// Oracle is a single-shot text completion service. Implementations must honor
// ctx cancellation; the caller bounds every call with a deadline.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into a dense vector for the semantic index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
