package embedding

import (
	"fmt"

	"manual-rag/internal/config"
)

// NewProvider constructs the embedding provider named by the configuration.
// Index builds and queries must go through the same provider, or scores are
// meaningless.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.Embedding.Provider {
	case "gemini":
		return NewGeminiProvider(cfg.Gemini.APIKey, cfg.Gemini.EmbeddingModel, cfg.Embedding.Dimensions), nil
	case "ollama":
		return NewOllamaProvider(cfg.Embedding.Ollama.BaseURL, cfg.Embedding.Ollama.Model, cfg.Embedding.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}
