package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard-ai/internal/chunker"
	"onboard-ai/internal/config"
	"onboard-ai/internal/models"
	"onboard-ai/internal/testutil"
	"onboard-ai/internal/vectordb"
)

var testVocab = []string{"vacation", "days", "safety", "helmet", "office"}

func newTestOrchestrator(gen *testutil.ScriptedGenerator) (*Orchestrator, vectordb.Store) {
	store := vectordb.NewMemoryStore()
	embedder := &testutil.KeywordEmbedder{Vocab: testVocab}
	cfg := &config.RAGConfig{RelevanceThreshold: 0.5, TopK: 5, ChunkSize: 1000, ChunkOverlap: 200}
	return New(store, embedder, gen, cfg), store
}

func ingestArticle(t *testing.T, o *Orchestrator, workspaceID, sourceID, title, content string) {
	t.Helper()
	c := chunker.New(&config.RAGConfig{ChunkSize: 1000, ChunkOverlap: 200})
	chunks := c.ChunkArticle(models.ArticleInput{Title: title, Content: content})
	require.NoError(t, o.Ingest(context.Background(), workspaceID, sourceID, chunks))
}

func TestQuery_ReturnsGroundedSources(t *testing.T) {
	ctx := context.Background()
	gen := &testutil.ScriptedGenerator{Response: "Employees get 28 days, colleague.\nEmotion: friendly"}
	o, _ := newTestOrchestrator(gen)

	ingestArticle(t, o, "w1", "S1", "Vacation Policy", "Employees get 28 days of paid vacation per year.")
	ingestArticle(t, o, "w1", "S2", "Safety Rules", "A helmet is mandatory in the production area.")

	resp, err := o.Query(ctx, "w1", "How many vacation days do employees get?", "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "Employees get 28 days, colleague.", resp.Answer)
	assert.Equal(t, "friendly", resp.Emotion)
	require.NotEmpty(t, resp.Sources)
	found := false
	for _, source := range resp.Sources {
		if source.Name == "Vacation Policy" {
			found = true
			assert.Contains(t, source.TextChunk, "28 days")
		}
	}
	assert.True(t, found, "expected a Vacation Policy citation")

	// The retrieved context reaches the generation prompt.
	assert.Contains(t, gen.LastPrompt, "28 days")
	assert.Contains(t, gen.LastPrompt, "How many vacation days")
	assert.Contains(t, gen.LastSystem, "Do not invent facts")
}

func TestQuery_EmptyWorkspace(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Response: "Unfortunately my documents contain no information on this question, please ask your mentor."}
	o, _ := newTestOrchestrator(gen)

	resp, err := o.Query(context.Background(), "empty", "Where is the cafeteria?", "sess-1")
	require.NoError(t, err)

	assert.Empty(t, resp.Sources)
	assert.Equal(t, "neutral", resp.Emotion)
	assert.Contains(t, resp.Answer, "no information")
	// The prompt disclosed that nothing relevant was found.
	assert.Contains(t, gen.LastPrompt, models.NoContextNotice)
}

func TestQuery_BelowThresholdHitsAreNotCited(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Response: "I cannot say."}
	o, _ := newTestOrchestrator(gen)

	ingestArticle(t, o, "w1", "S1", "Office Hours", "The office opens at eight.")

	// No vocabulary overlap with the stored chunk: similarity stays low.
	resp, err := o.Query(context.Background(), "w1", "What is the meaning of life?", "sess-1")
	require.NoError(t, err)

	assert.Empty(t, resp.Sources)
	assert.Contains(t, gen.LastPrompt, models.NoContextNotice)
	// The weak hit itself still travels with the prompt.
	assert.Contains(t, gen.LastPrompt, "The office opens at eight.")
}

func TestQuery_GenerationOutageDegrades(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Err: fmt.Errorf("%w: connection refused", models.ErrGenerationService)}
	o, _ := newTestOrchestrator(gen)

	ingestArticle(t, o, "w1", "S1", "Vacation Policy", "Employees get 28 days of vacation.")

	resp, err := o.Query(context.Background(), "w1", "How many vacation days?", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApologyAnswer, resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.Equal(t, "neutral", resp.Emotion)
}

func TestIngest_EmbeddingFailureNamesStage(t *testing.T) {
	store := vectordb.NewMemoryStore()
	cfg := &config.RAGConfig{RelevanceThreshold: 0.5, TopK: 5}
	o := New(store, testutil.FailingEmbedder{}, &testutil.ScriptedGenerator{}, cfg)

	err := o.Ingest(context.Background(), "w1", "S1", []models.Chunk{{Text: "text", Metadata: map[string]string{}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEmbeddingService))
	assert.Contains(t, err.Error(), "embedding stage")
}

func TestIngest_TagsSourceID(t *testing.T) {
	ctx := context.Background()
	gen := &testutil.ScriptedGenerator{Response: "ok"}
	o, store := newTestOrchestrator(gen)

	require.NoError(t, o.Ingest(ctx, "w1", "S9", []models.Chunk{
		{Text: "vacation days info", Metadata: map[string]string{models.MetaSourceName: "a.txt"}},
		{Text: "more vacation info", Metadata: nil},
	}))

	embedder := &testutil.KeywordEmbedder{Vocab: testVocab}
	vector, err := embedder.EmbedQuery(ctx, "vacation")
	require.NoError(t, err)

	results, err := store.Query(ctx, vectordb.CollectionName("w1"), vector, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, result := range results {
		assert.Equal(t, "S9", result.Metadata[models.MetaSourceID])
	}
}

func TestDeleteEmbeddings_RoundTrip(t *testing.T) {
	ctx := context.Background()
	gen := &testutil.ScriptedGenerator{Response: "gone"}
	o, _ := newTestOrchestrator(gen)

	ingestArticle(t, o, "w1", "S1", "Vacation Policy", "Employees get 28 days of vacation.")
	ingestArticle(t, o, "w1", "S2", "Safety Rules", "A safety helmet is mandatory.")

	require.NoError(t, o.DeleteEmbeddings(ctx, vectordb.CollectionName("w1"), "S1"))

	resp, err := o.Query(ctx, "w1", "How many vacation days?", "sess-1")
	require.NoError(t, err)
	for _, source := range resp.Sources {
		assert.NotEqual(t, "Vacation Policy", source.Name)
		assert.NotContains(t, source.TextChunk, "28 days")
	}

	t.Run("deleting an already-deleted source succeeds", func(t *testing.T) {
		assert.NoError(t, o.DeleteEmbeddings(ctx, vectordb.CollectionName("w1"), "S1"))
	})
}

func TestIngest_EmptyChunkListIsNoOp(t *testing.T) {
	gen := &testutil.ScriptedGenerator{}
	o, _ := newTestOrchestrator(gen)
	assert.NoError(t, o.Ingest(context.Background(), "w1", "S1", nil))
}

func TestSplitEmotion(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		answer  string
		emotion string
	}{
		{"tagged answer", "All good, colleague.\nEmotion: friendly", "All good, colleague.", "friendly"},
		{"no tag", "All good, colleague.", "All good, colleague.", "neutral"},
		{"uppercase tag value", "Be careful.\nEmotion: STRICT", "Be careful.", "strict"},
		{"multi-word tag stripped but defaulted", "Answer.\nEmotion: very friendly", "Answer.", "neutral"},
		{"empty tag stripped", "Answer.\nEmotion:", "Answer.", "neutral"},
		{"empty", "", "", "neutral"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, emotion := splitEmotion(tt.in)
			assert.Equal(t, tt.answer, answer)
			assert.Equal(t, tt.emotion, emotion)
		})
	}
}
