// Package rag coordinates chunk embedding, vector storage and grounded
// answer generation for the onboarding knowledge base.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"onboard-ai/internal/config"
	"onboard-ai/internal/llmservice"
	"onboard-ai/internal/models"
	"onboard-ai/internal/vectordb"
)

// Orchestrator drives the ingestion path (embed, tag, store) and the
// query path (embed, search, prompt, generate). One instance is shared
// by all requests; the store and the LLM endpoints synchronize
// themselves.
type Orchestrator struct {
	store     vectordb.Store
	embedder  embeddings.Embedder
	generator llmservice.Generator
	cfg       *config.RAGConfig
}

func New(store vectordb.Store, embedder embeddings.Embedder, generator llmservice.Generator, cfg *config.RAGConfig) *Orchestrator {
	return &Orchestrator{
		store:     store,
		embedder:  embedder,
		generator: generator,
		cfg:       cfg,
	}
}

// Ingest embeds the chunk texts, tags every metadata entry with the
// source id and upserts into the workspace collection with ids
// {sourceID}_{index}. The failing stage is named in the returned error.
// Re-ingesting the same source without deleting first duplicates ids
// per store semantics (overwrite by id).
func (o *Orchestrator) Ingest(ctx context.Context, workspaceID, sourceID string, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		log.Info().Str("workspace", workspaceID).Str("source", sourceID).Msg("No chunks to ingest")
		return nil
	}

	collectionName := vectordb.CollectionName(workspaceID)
	if err := o.store.EnsureCollection(ctx, collectionName); err != nil {
		return fmt.Errorf("ingest failed at collection stage: %w", err)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := o.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("ingest failed at embedding stage: %w", err)
	}

	records := make([]vectordb.Record, len(chunks))
	for i, chunk := range chunks {
		if chunk.Metadata == nil {
			chunk.Metadata = map[string]string{}
		}
		chunk.Metadata[models.MetaSourceID] = sourceID
		records[i] = vectordb.Record{
			ID:        fmt.Sprintf("%s_%d", sourceID, i),
			Content:   chunk.Text,
			Metadata:  chunk.Metadata,
			Embedding: vectors[i],
		}
	}
	if err := o.store.Upsert(ctx, collectionName, records); err != nil {
		return fmt.Errorf("ingest failed at storage stage: %w", err)
	}

	log.Info().Str("workspace", workspaceID).Str("source", sourceID).Int("chunks", len(chunks)).Msg("Ingested source")
	return nil
}

// Query answers a question from the workspace knowledge base. Generation
// failures degrade to an apology answer with no sources so a transient
// LLM outage never breaks the chat.
func (o *Orchestrator) Query(ctx context.Context, workspaceID, question, sessionID string) (*models.QueryResponse, error) {
	questionVector, err := o.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("query failed at embedding stage: %w", err)
	}

	hits, err := o.store.Query(ctx, vectordb.CollectionName(workspaceID), questionVector, o.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("query failed at retrieval stage: %w", err)
	}

	sources, contextBlock := o.assembleContext(hits)

	answer, err := o.generator.Generate(ctx, o.personaPrompt(),
		fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, question),
		llmservice.GenerateOptions{})
	if err != nil {
		if errors.Is(err, models.ErrGenerationService) {
			log.Error().Err(err).Str("session", sessionID).Msg("Generation unavailable, returning degraded answer")
			return &models.QueryResponse{
				Answer:  models.ApologyAnswer,
				Sources: []models.QuerySource{},
				Emotion: "neutral",
			}, nil
		}
		return nil, err
	}

	answerText, emotion := splitEmotion(answer)
	return &models.QueryResponse{
		Answer:  answerText,
		Sources: sources,
		Emotion: emotion,
	}, nil
}

// DeleteEmbeddings removes every record of a source from a collection.
// It succeeds when the source has no indexed chunks.
func (o *Orchestrator) DeleteEmbeddings(ctx context.Context, collectionName, sourceID string) error {
	if err := o.store.DeleteBySource(ctx, collectionName, sourceID); err != nil {
		return err
	}
	log.Info().Str("collection", collectionName).Str("source", sourceID).Msg("Deleted source embeddings")
	return nil
}

func (o *Orchestrator) personaPrompt() string {
	if o.cfg.PersonaPrompt != "" {
		return o.cfg.PersonaPrompt
	}
	return models.DefaultPersonaPrompt
}

// assembleContext turns retrieval hits into citation sources and the
// prompt context block. Hits below the relevance threshold stay in the
// prompt (the persona instructs disclosure) but are not cited; when no
// hit clears the threshold the block carries the no-context notice.
func (o *Orchestrator) assembleContext(hits []vectordb.Result) ([]models.QuerySource, string) {
	sources := []models.QuerySource{}
	var contextBlock strings.Builder
	relevant := 0
	for _, hit := range hits {
		contextBlock.WriteString(hit.Content)
		contextBlock.WriteString("\n\n")
		if hit.Similarity < o.cfg.RelevanceThreshold {
			log.Debug().Float32("similarity", hit.Similarity).Msg("Hit below relevance threshold")
			continue
		}
		relevant++
		source := models.QuerySource{
			Name:      hit.Metadata[models.MetaSourceName],
			TextChunk: hit.Content,
		}
		if pageStr, ok := hit.Metadata[models.MetaPage]; ok {
			if page, err := strconv.Atoi(pageStr); err == nil {
				source.Page = &page
			}
		}
		sources = append(sources, source)
	}
	if relevant == 0 {
		contextBlock.WriteString(models.NoContextNotice)
	}
	return sources, contextBlock.String()
}

// splitEmotion strips the trailing "Emotion: <tag>" line the persona
// prompt requests. Missing or malformed tags default to neutral.
func splitEmotion(answer string) (string, string) {
	answer = strings.TrimSpace(answer)
	idx := strings.LastIndex(answer, "\n")
	lastLine := answer
	if idx >= 0 {
		lastLine = answer[idx+1:]
	}
	lastLine = strings.TrimSpace(lastLine)
	if !strings.HasPrefix(lastLine, "Emotion:") {
		return answer, "neutral"
	}
	// A malformed tag still marks the line as prompt scaffolding; strip
	// it either way and only keep a clean single-word value.
	emotion := strings.TrimSpace(strings.TrimPrefix(lastLine, "Emotion:"))
	if emotion == "" || strings.ContainsAny(emotion, " \t") {
		emotion = "neutral"
	} else {
		emotion = strings.ToLower(emotion)
	}
	if idx < 0 {
		// The whole answer was the emotion line; keep it as answer too.
		return answer, emotion
	}
	return strings.TrimSpace(answer[:idx]), emotion
}
