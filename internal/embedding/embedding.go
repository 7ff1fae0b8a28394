package embedding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"

	"onboard-ai/internal/config"
	"onboard-ai/internal/models"
)

// NewOllamaEmbedder creates a langchaingo embedder for one model tag on
// the configured Ollama server.
func NewOllamaEmbedder(cfg *config.LLMConfig, model string) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding LLM: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

// FallbackEmbedder tries an ordered list of model-bound embedders until
// one succeeds. Ingestion and query share one instance, keeping the
// embedding space consistent.
type FallbackEmbedder struct {
	models    []string
	embedders []embeddings.Embedder
}

var _ embeddings.Embedder = (*FallbackEmbedder)(nil)

// NewFallbackEmbedder builds one embedder per candidate model, primary
// first.
func NewFallbackEmbedder(cfg *config.LLMConfig) (*FallbackEmbedder, error) {
	modelNames := cfg.Models()
	f := &FallbackEmbedder{models: modelNames}
	for _, model := range modelNames {
		embedder, err := NewOllamaEmbedder(cfg, model)
		if err != nil {
			return nil, err
		}
		f.embedders = append(f.embedders, embedder)
	}
	return f, nil
}

func (f *FallbackEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for i, embedder := range f.embedders {
		vectors, err := embedder.EmbedDocuments(ctx, texts)
		if err == nil {
			if len(vectors) != len(texts) {
				return nil, fmt.Errorf("%w: got %d vectors for %d texts", models.ErrEmbeddingService, len(vectors), len(texts))
			}
			for _, vector := range vectors {
				if len(vector) != len(vectors[0]) {
					return nil, fmt.Errorf("%w: inconsistent vector dimensions %d and %d", models.ErrEmbeddingService, len(vectors[0]), len(vector))
				}
			}
			return vectors, nil
		}
		log.Warn().Err(err).Str("model", f.models[i]).Msg("Embedding model failed, trying next candidate")
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingService, lastErr)
}

func (f *FallbackEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for i, embedder := range f.embedders {
		vector, err := embedder.EmbedQuery(ctx, text)
		if err == nil {
			return vector, nil
		}
		log.Warn().Err(err).Str("model", f.models[i]).Msg("Embedding model failed, trying next candidate")
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingService, lastErr)
}
