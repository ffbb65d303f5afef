package core

import "context"

type AIProvider interface {
	Chat(ctx context.Context, history []Message) (Message, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// RecordStore executes compiled predicates against one table of the
// external structured store. An empty predicate list means unfiltered.
type RecordStore interface {
	Query(ctx context.Context, table string, predicates []Predicate, limit int) ([]Record, error)
}

// VectorIndex returns the topK nearest neighbors for a query vector,
// unfiltered by score; thresholding is the retriever's job.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
}
