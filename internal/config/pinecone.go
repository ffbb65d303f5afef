package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/motorbot/pkg/log"
)

type PineconeConfig struct {
	// Endpoint is the index host, e.g. https://my-index-abc123.svc.pinecone.io
	Endpoint string `env:"PINECONE_ENDPOINT,required,notEmpty"`
	APIKey   string `env:"PINECONE_API_KEY,required,notEmpty"`
	TopK     int    `env:"PINECONE_TOP_K" envDefault:"5"`
	// ScoreThreshold is deployment-tuned; observed useful values range
	// from 0.2 to 0.8 depending on the corpus.
	ScoreThreshold float64 `env:"SCORE_THRESHOLD" envDefault:"0.5"`
}

func NewPineconeConfig(ctx context.Context) *PineconeConfig {
	c := &PineconeConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Pinecone config")
	}
	return c
}
