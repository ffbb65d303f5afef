package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sandevgo/motorbot/internal/core"
	"github.com/sandevgo/motorbot/pkg/log"
	"github.com/sandevgo/motorbot/pkg/retry"
)

// Upserter writes embedded documents into the similarity index.
type Upserter interface {
	Upsert(ctx context.Context, id string, vector []float32, text string) error
}

// Ingestor feeds knowledge snippets into the similarity index so the
// vector retriever can find them later.
type Ingestor struct {
	embedder core.Embedder
	index    Upserter
	retrier  *retry.Retrier
}

func New(embedder core.Embedder, index Upserter, maxRetries int) *Ingestor {
	return &Ingestor{
		embedder: embedder,
		index:    index,
		retrier:  retry.NewUpstreamRetrier(maxRetries, core.IsRetryable),
	}
}

// Ingest embeds one snippet and stores it under a fresh document id.
func (i *Ingestor) Ingest(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &core.ValidationError{Reason: "empty snippet"}
	}

	var vector []float32
	err := i.retrier.Do(ctx, func() error {
		var eErr error
		vector, eErr = i.embedder.Embed(ctx, text)
		return eErr
	})
	if err != nil {
		return "", fmt.Errorf("embedding failed: %w", err)
	}

	id := "doc-" + uuid.NewString()[:8]
	err = i.retrier.Do(ctx, func() error {
		return i.index.Upsert(ctx, id, vector, text)
	})
	if err != nil {
		return "", fmt.Errorf("index upsert failed: %w", err)
	}

	log.FromCtx(ctx).Info().Str("doc_id", id).Int("chars", len(text)).Msg("snippet ingested")
	return id, nil
}
