package retrieval

import (
	"context"

	"github.com/sandevgo/motorbot/internal/core"
	"github.com/sandevgo/motorbot/pkg/log"
	"github.com/sandevgo/motorbot/pkg/retry"
)

// Structured runs compiled predicates against the record store, walking
// the configured tables in order and stopping at the first one that
// returns rows. A table that errors out is skipped, not fatal; only
// when every table comes back empty or broken does the result degrade
// to SourceNone.
type Structured struct {
	store   core.RecordStore
	tables  []string
	limit   int
	retrier *retry.Retrier
}

func NewStructured(store core.RecordStore, tables []string, limit, maxRetries int) *Structured {
	return &Structured{
		store:   store,
		tables:  tables,
		limit:   limit,
		retrier: retry.NewUpstreamRetrier(maxRetries, core.IsRetryable),
	}
}

func (s *Structured) Retrieve(ctx context.Context, predicates []core.Predicate) (core.RetrievalResult, error) {
	logger := log.FromCtx(ctx)

	for _, table := range s.tables {
		var records []core.Record
		err := s.retrier.Do(ctx, func() error {
			var qErr error
			records, qErr = s.store.Query(ctx, table, predicates, s.limit)
			return qErr
		})
		if err != nil {
			logger.Warn().Err(err).Str("table", table).Msg("table query failed, trying next")
			continue
		}
		if len(records) > 0 {
			return core.RetrievalResult{Source: core.SourceStructured, Records: records}, nil
		}
	}

	return core.RetrievalResult{Source: core.SourceNone}, nil
}
