package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaHost           = "http://localhost:11434"
	defaultOllamaModel          = "llama3"
	defaultOllamaEmbeddingModel = "nomic-embed-text"
)

// OllamaClient calls a local Ollama server over its REST API.
type OllamaClient struct {
	host           string
	model          string
	embeddingModel string
	httpClient     *http.Client
}

func NewOllamaClient(host, model, embeddingModel string, timeout time.Duration) *OllamaClient {
	if host = strings.TrimRight(strings.TrimSpace(host), "/"); host == "" {
		host = defaultOllamaHost
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultOllamaModel
	}
	if embeddingModel = strings.TrimSpace(embeddingModel); embeddingModel == "" {
		embeddingModel = defaultOllamaEmbeddingModel
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &OllamaClient{
		host:           host,
		model:          model,
		embeddingModel: embeddingModel,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (o *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	var out generateResponse
	if err := o.post(ctx, "/api/generate", generateRequest{Model: o.model, Prompt: prompt}, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", errors.New("ollama returned empty response")
	}
	return out.Response, nil
}

func (o *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var out embeddingResponse
	if err := o.post(ctx, "/api/embeddings", embeddingRequest{Model: o.embeddingModel, Prompt: text}, &out); err != nil {
		return nil, err
	}
	if len(out.Embedding) == 0 {
		return nil, errors.New("ollama returned no embedding")
	}
	return out.Embedding, nil
}

func (o *OllamaClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("ollama %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ollama %s: decode: %w", path, err)
	}
	return nil
}
