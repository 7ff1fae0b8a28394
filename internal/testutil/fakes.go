// Package testutil provides deterministic fakes for the LLM seams.
package testutil

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/tmc/langchaingo/embeddings"

	"onboard-ai/internal/llmservice"
	"onboard-ai/internal/models"
)

// KeywordEmbedder is a deterministic embedder for retrieval tests: each
// vocabulary word is one dimension, counting occurrences, plus a small
// constant dimension so no vector is zero. Texts sharing vocabulary
// words end up close in cosine space.
type KeywordEmbedder struct {
	Vocab []string
}

var _ embeddings.Embedder = (*KeywordEmbedder)(nil)

func (e *KeywordEmbedder) embed(text string) []float32 {
	v := make([]float32, len(e.Vocab)+1)
	lower := strings.ToLower(text)
	for i, word := range e.Vocab {
		v[i] = float32(strings.Count(lower, word))
	}
	v[len(e.Vocab)] = 0.1

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

func (e *KeywordEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e *KeywordEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

// FailingEmbedder always fails, for error-path tests.
type FailingEmbedder struct{}

var _ embeddings.Embedder = (*FailingEmbedder)(nil)

func (FailingEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, fmt.Errorf("%w: endpoint down", models.ErrEmbeddingService)
}

func (FailingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("%w: endpoint down", models.ErrEmbeddingService)
}

// ScriptedGenerator returns a fixed response and records what it was
// asked, or fails when Err is set.
type ScriptedGenerator struct {
	Response string
	Err      error

	LastSystem string
	LastPrompt string
	LastOpts   llmservice.GenerateOptions
	Calls      int
}

var _ llmservice.Generator = (*ScriptedGenerator)(nil)

func (g *ScriptedGenerator) Generate(ctx context.Context, system, prompt string, opts llmservice.GenerateOptions) (string, error) {
	g.Calls++
	g.LastSystem = system
	g.LastPrompt = prompt
	g.LastOpts = opts
	if g.Err != nil {
		return "", g.Err
	}
	return g.Response, nil
}
