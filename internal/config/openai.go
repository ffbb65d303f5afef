package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/motorbot/pkg/log"
)

type OpenAIConfig struct {
	APIKey         string `env:"OPENAI_API_KEY,required,notEmpty"`
	ChatModel      string `env:"OPENAI_CHAT_MODEL" envDefault:"gpt-4o"`
	EmbeddingModel string `env:"OPENAI_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
}

func NewOpenAIConfig(ctx context.Context) *OpenAIConfig {
	c := &OpenAIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OpenAI config")
	}
	return c
}
