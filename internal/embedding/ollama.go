package embedding

import (
	"context"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaProvider embeds through a local Ollama server, for deployments
// without Gemini access.
type OllamaProvider struct {
	embedder   *embeddings.EmbedderImpl
	dimensions int
}

func NewOllamaProvider(baseURL, model string, dimensions int) (*OllamaProvider, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	if dimensions == 0 {
		dimensions = 768
	}
	return &OllamaProvider{embedder: embedder, dimensions: dimensions}, nil
}

func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.embedder.EmbedQuery(ctx, text)
}

func (p *OllamaProvider) Dimensions() int {
	return p.dimensions
}
