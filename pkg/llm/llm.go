// Package llm wraps the language-model providers used for entity extraction
// and embeddings.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client completes prompts and embeds text with one provider.
type Client interface {
	Completer
	Embedder
}

type Config struct {
	Provider       string
	Model          string
	EmbeddingModel string
	EmbeddingDim   int
	GeminiAPIKey   string
	OllamaHost     string
	RatePerSecond  float64
	HTTPTimeout    time.Duration
}

// NewClient builds the configured provider, rate limited when
// cfg.RatePerSecond > 0.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	var (
		client Client
		err    error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderGemini:
		client, err = NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.EmbeddingModel, cfg.EmbeddingDim)
	case ProviderOllama, "":
		client = NewOllamaClient(cfg.OllamaHost, cfg.Model, cfg.EmbeddingModel, cfg.HTTPTimeout)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.RatePerSecond > 0 {
		client = NewRateLimited(client, cfg.RatePerSecond, 1)
	}
	return client, nil
}
