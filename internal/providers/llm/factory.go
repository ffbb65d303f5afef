package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/motorbot/internal/config"
	"github.com/sandevgo/motorbot/pkg/log"
)

// NewProvider creates the chat provider together with the embedding
// provider backing the similarity index. OpenRouter has no embeddings
// endpoint, so that selection also reads the OpenAI settings and pairs
// them in for the embedding side; a missing OPENAI_API_KEY stops the
// process here instead of failing every knowledge question later.
func NewProvider(ctx context.Context, appCfg *config.AppConfig) (chat, embedder *OpenAICompatible, err error) {
	log.FromCtx(ctx).Info().
		Str("provider", appCfg.LLMProvider).
		Msg("starting llm provider")

	switch appCfg.LLMProvider {
	case "openai":
		cfg := config.NewOpenAIConfig(ctx)
		p := NewOpenAI(cfg.APIKey, cfg.ChatModel, cfg.EmbeddingModel).OpenAICompatible
		return p, p, nil
	case "openrouter":
		cfg := config.NewOpenRouterConfig(ctx)
		embedCfg := config.NewOpenAIConfig(ctx)
		chat = NewOpenRouter(cfg.APIKey, cfg.Model).OpenAICompatible
		embedder = NewOpenAI(embedCfg.APIKey, embedCfg.ChatModel, embedCfg.EmbeddingModel).OpenAICompatible
		return chat, embedder, nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider: %s", appCfg.LLMProvider)
	}
}
