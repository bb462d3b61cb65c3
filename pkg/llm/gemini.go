package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel          = "gemini-2.5-flash"
	defaultGeminiEmbeddingModel = "text-embedding-004"
)

// GeminiClient talks to the Gemini API backend.
type GeminiClient struct {
	client         *genai.Client
	model          string
	embeddingModel string
	dimensions     int
}

func NewGeminiClient(ctx context.Context, apiKey, model, embeddingModel string, dimensions int) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}
	if embeddingModel = strings.TrimSpace(embeddingModel); embeddingModel == "" {
		embeddingModel = defaultGeminiEmbeddingModel
	}

	return &GeminiClient{
		client:         client,
		model:          model,
		embeddingModel: embeddingModel,
		dimensions:     dimensions,
	}, nil
}

// Complete sends the prompt and joins the text parts of every candidate.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(part.Text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var cfg *genai.EmbedContentConfig
	if g.dimensions > 0 {
		dims := int32(g.dimensions)
		cfg = &genai.EmbedContentConfig{OutputDimensionality: &dims}
	}
	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned no embedding")
	}
	return resp.Embeddings[0].Values, nil
}
