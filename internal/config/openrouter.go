package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/motorbot/pkg/log"
)

type OpenRouterConfig struct {
	APIKey string `env:"OPENROUTER_API_KEY,required,notEmpty"`
	Model  string `env:"OPENROUTER_MODEL,required,notEmpty" envDefault:"openai/gpt-4o"`
}

func NewOpenRouterConfig(ctx context.Context) *OpenRouterConfig {
	c := &OpenRouterConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OpenRouter config")
	}
	return c
}
