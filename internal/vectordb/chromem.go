package vectordb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"onboard-ai/internal/models"
)

// ChromemStore keeps one chromem-go collection per workspace, persisted
// under a directory. Concurrency control is left to chromem itself.
type ChromemStore struct {
	db *chromem.DB
}

var _ Store = (*ChromemStore)(nil)

// NewChromemStore opens (or creates) a persistent database at path.
func NewChromemStore(path string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", models.ErrVectorStore, err)
	}
	return &ChromemStore{db: db}, nil
}

// NewMemoryStore creates an in-memory store, used by the CLI dry-run and
// by tests.
func NewMemoryStore() *ChromemStore {
	return &ChromemStore{db: chromem.NewDB()}
}

func (s *ChromemStore) EnsureCollection(ctx context.Context, collectionName string) error {
	if _, err := s.db.GetOrCreateCollection(collectionName, nil, nil); err != nil {
		return fmt.Errorf("%w: failed to create/get collection %s: %v", models.ErrVectorStore, collectionName, err)
	}
	return nil
}

func (s *ChromemStore) Upsert(ctx context.Context, collectionName string, records []Record) error {
	collection, err := s.db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create/get collection %s: %v", models.ErrVectorStore, collectionName, err)
	}

	docs := make([]chromem.Document, len(records))
	for i, record := range records {
		docs[i] = chromem.Document{
			ID:        record.ID,
			Content:   record.Content,
			Metadata:  record.Metadata,
			Embedding: record.Embedding,
		}
	}
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("%w: failed to add documents: %v", models.ErrVectorStore, err)
	}
	return nil
}

func (s *ChromemStore) Query(ctx context.Context, collectionName string, embedding []float32, topK int) ([]Result, error) {
	collection := s.db.GetCollection(collectionName, nil)
	if collection == nil {
		// A workspace with no ingested documents yet.
		return nil, nil
	}

	// chromem rejects nResults above the document count.
	count := collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	hits, err := collection.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query collection %s: %v", models.ErrVectorStore, collectionName, err)
	}

	results := make([]Result, len(hits))
	for i, hit := range hits {
		results[i] = Result{
			Content:    hit.Content,
			Metadata:   hit.Metadata,
			Similarity: hit.Similarity,
		}
	}
	return results, nil
}

func (s *ChromemStore) DeleteBySource(ctx context.Context, collectionName, sourceID string) error {
	collection := s.db.GetCollection(collectionName, nil)
	if collection == nil {
		return nil
	}
	where := map[string]string{models.MetaSourceID: sourceID}
	if err := collection.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("%w: failed to delete source %s: %v", models.ErrVectorStore, sourceID, err)
	}
	return nil
}

func (s *ChromemStore) Close() error {
	return nil
}
