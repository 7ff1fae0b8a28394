package models

import "errors"

// Error taxonomy of the pipeline. Wrapped with fmt.Errorf("...: %w", ...)
// at the failure site, classified with errors.Is at the boundary.
var (
	// ErrChunkExtraction marks an unreadable or malformed source document.
	// Ingestion of that source is aborted.
	ErrChunkExtraction = errors.New("chunk extraction failed")

	// ErrEmbeddingService marks an unreachable embedding endpoint or a
	// response without the expected vector, after all fallback models.
	ErrEmbeddingService = errors.New("embedding service failed")

	// ErrVectorStore marks a failed collection operation. A missing
	// collection at query time is an empty result, not this error.
	ErrVectorStore = errors.New("vector store operation failed")

	// ErrGenerationService marks an unreachable generation endpoint. The
	// query path downgrades it to an apology answer, the quiz path to an
	// empty question list.
	ErrGenerationService = errors.New("generation service failed")
)
