// Package vectordb abstracts per-workspace vector collections over an
// embedded chromem-go database or a pgvector-enabled Postgres.
package vectordb

import (
	"context"
	"fmt"
)

// Record is one stored (id, vector, document, metadata) entry.
type Record struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// Result is one nearest-neighbor hit, ranked by similarity descending.
type Result struct {
	Content    string
	Metadata   map[string]string
	Similarity float32
}

// Store is the collection-scoped contract the orchestrator depends on.
// Collections are created lazily on first upsert. Querying a collection
// that does not exist returns an empty result, not an error.
type Store interface {
	// EnsureCollection is an idempotent get-or-create.
	EnsureCollection(ctx context.Context, collectionName string) error

	// Upsert adds or overwrites records by id.
	Upsert(ctx context.Context, collectionName string, records []Record) error

	// Query returns at most topK nearest records.
	Query(ctx context.Context, collectionName string, embedding []float32, topK int) ([]Result, error)

	// DeleteBySource removes all records whose metadata source_id
	// matches. No-op when nothing matches.
	DeleteBySource(ctx context.Context, collectionName, sourceID string) error

	Close() error
}

// CollectionName derives the tenant collection name from a workspace id.
func CollectionName(workspaceID string) string {
	return fmt.Sprintf("workspace_%s", workspaceID)
}
