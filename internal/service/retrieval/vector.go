package retrieval

import (
	"context"
	"fmt"

	"github.com/sandevgo/motorbot/internal/core"
	"github.com/sandevgo/motorbot/pkg/log"
	"github.com/sandevgo/motorbot/pkg/retry"
)

// Vector embeds the question and asks the similarity index for the
// nearest neighbors, keeping only matches at or above the score
// threshold. An empty post-threshold set is not an error; it reports
// SourceNone so the caller can fall through to structured retrieval.
type Vector struct {
	embedder  core.Embedder
	index     core.VectorIndex
	topK      int
	threshold float64
	retrier   *retry.Retrier
}

func NewVector(embedder core.Embedder, index core.VectorIndex, topK int, threshold float64, maxRetries int) *Vector {
	return &Vector{
		embedder:  embedder,
		index:     index,
		topK:      topK,
		threshold: threshold,
		retrier:   retry.NewUpstreamRetrier(maxRetries, core.IsRetryable),
	}
}

func (v *Vector) Retrieve(ctx context.Context, question string) (core.RetrievalResult, error) {
	logger := log.FromCtx(ctx)

	var vector []float32
	err := v.retrier.Do(ctx, func() error {
		var eErr error
		vector, eErr = v.embedder.Embed(ctx, question)
		return eErr
	})
	if err != nil {
		return core.RetrievalResult{Source: core.SourceNone}, fmt.Errorf("embedding failed: %w", err)
	}

	var matches []core.Match
	err = v.retrier.Do(ctx, func() error {
		var qErr error
		matches, qErr = v.index.Query(ctx, vector, v.topK)
		return qErr
	})
	if err != nil {
		return core.RetrievalResult{Source: core.SourceNone}, fmt.Errorf("similarity query failed: %w", err)
	}

	kept := make([]core.Match, 0, len(matches))
	best := 0.0
	for _, m := range matches {
		if m.Score > best {
			best = m.Score
		}
		if m.Score >= v.threshold {
			kept = append(kept, m)
		}
	}

	if len(kept) == 0 {
		logger.Debug().Float64("best", best).Float64("threshold", v.threshold).Msg("no match above threshold")
		return core.RetrievalResult{Source: core.SourceNone, Confidence: best}, nil
	}

	return core.RetrievalResult{Source: core.SourceVector, Matches: kept, Confidence: best}, nil
}
