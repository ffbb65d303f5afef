// Package pinecone queries a Pinecone index endpoint for nearest neighbors.
package pinecone

import (
	"context"
	"net/http"
	"time"

	"github.com/sandevgo/motorbot/internal/core"
	"github.com/sandevgo/motorbot/internal/providers/rest"
)

type Client struct {
	rest   *rest.Client
	apiKey string
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		rest:   rest.NewClient("pinecone", endpoint, 15*time.Second),
		apiKey: apiKey,
	}
}

func (c *Client) Query(ctx context.Context, vector []float32, topK int) ([]core.Match, error) {
	payload := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
	}
	headers := map[string]string{
		"Api-Key": c.apiKey,
	}

	var result struct {
		Matches []struct {
			Score    float64 `json:"score"`
			Metadata struct {
				Text string `json:"text"`
			} `json:"metadata"`
		} `json:"matches"`
	}
	if err := c.rest.DoJSON(ctx, http.MethodPost, "/query", payload, headers, &result); err != nil {
		return nil, err
	}

	matches := make([]core.Match, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, core.Match{Score: m.Score, Text: m.Metadata.Text})
	}
	return matches, nil
}

// Upsert writes one embedded document into the index.
func (c *Client) Upsert(ctx context.Context, id string, vector []float32, text string) error {
	payload := map[string]any{
		"vectors": []map[string]any{
			{
				"id":       id,
				"values":   vector,
				"metadata": map[string]string{"text": text},
			},
		},
	}
	headers := map[string]string{
		"Api-Key": c.apiKey,
	}
	return c.rest.DoJSON(ctx, http.MethodPost, "/vectors/upsert", payload, headers, nil)
}
