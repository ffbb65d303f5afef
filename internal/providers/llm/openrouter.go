package llm

import "github.com/sandevgo/motorbot/internal/core"

type OpenRouter struct {
	*OpenAICompatible
}

// NewOpenRouter routes chat completions through OpenRouter. Embeddings
// are not exposed there, so the embedding model field stays empty and
// NewProvider pairs this with a direct OpenAI embedding provider.
func NewOpenRouter(apiKey, model string) *OpenRouter {
	return &OpenRouter{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Name:       "openrouter",
			BaseURL:    "https://openrouter.ai/api",
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			ExtraHeaders: map[string]string{
				"X-Title": core.BotName,
			},
		}),
	}
}
