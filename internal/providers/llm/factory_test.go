package llm

import (
	"context"
	"testing"

	"github.com/sandevgo/motorbot/internal/config"
)

func TestNewProviderOpenAIEmbedsItself(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	chat, embedder, err := NewProvider(context.Background(), &config.AppConfig{LLMProvider: "openai"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if chat != embedder {
		t.Error("openai serves both chat and embeddings with one client")
	}
	if embedder.embeddingModel == "" {
		t.Error("embedder has no embedding model")
	}
}

func TestNewProviderOpenRouterPairsEmbedder(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("OPENROUTER_MODEL", "openai/gpt-4o")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	chat, embedder, err := NewProvider(context.Background(), &config.AppConfig{LLMProvider: "openrouter"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if chat == embedder {
		t.Error("openrouter cannot embed, a paired provider must back the index")
	}
	if chat.embeddingModel != "" {
		t.Errorf("openrouter embedding model = %q", chat.embeddingModel)
	}
	if embedder.embeddingModel == "" {
		t.Error("paired embedder has no embedding model")
	}
}

func TestNewProviderUnknown(t *testing.T) {
	_, _, err := NewProvider(context.Background(), &config.AppConfig{LLMProvider: "ollama"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestEmbedWithoutModel(t *testing.T) {
	p := NewOpenRouter("sk-or-test", "openai/gpt-4o")
	if _, err := p.Embed(context.Background(), "營業時間"); err == nil {
		t.Fatal("embedding without a configured model must fail")
	}
}
