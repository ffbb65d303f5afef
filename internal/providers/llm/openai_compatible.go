package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sandevgo/motorbot/internal/core"
	"github.com/sandevgo/motorbot/internal/providers/rest"
)

type OpenAICompatible struct {
	client         *rest.Client
	model          string
	embeddingModel string
	authHeader     string
	authPrefix     string
	apiKey         string
	extraHeaders   map[string]string
}

type OpenAICompatibleConfig struct {
	Name           string
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
	AuthHeader     string // e.g., "Authorization"
	AuthPrefix     string // e.g., "Bearer "
	ExtraHeaders   map[string]string
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		client:         rest.NewClient(cfg.Name, cfg.BaseURL, 120*time.Second),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		authHeader:     cfg.AuthHeader,
		authPrefix:     cfg.AuthPrefix,
		apiKey:         cfg.APIKey,
		extraHeaders:   cfg.ExtraHeaders,
	}
}

func (o *OpenAICompatible) headers() map[string]string {
	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}
	return headers
}

func (o *OpenAICompatible) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": history,
	}

	var result struct {
		Choices []struct {
			Message core.Message `json:"message"`
		} `json:"choices"`
	}
	if err := o.client.DoJSON(ctx, http.MethodPost, "/v1/chat/completions", payload, o.headers(), &result); err != nil {
		return core.Message{}, err
	}
	if len(result.Choices) == 0 {
		return core.Message{}, fmt.Errorf("chat completion: empty choices")
	}
	return result.Choices[0].Message, nil
}

func (o *OpenAICompatible) Embed(ctx context.Context, text string) ([]float32, error) {
	if o.embeddingModel == "" {
		return nil, fmt.Errorf("embeddings: provider has no embedding model configured")
	}
	payload := map[string]any{
		"model": o.embeddingModel,
		"input": []string{text},
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := o.client.DoJSON(ctx, http.MethodPost, "/v1/embeddings", payload, o.headers(), &result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("embeddings: empty data")
	}
	return result.Data[0].Embedding, nil
}
