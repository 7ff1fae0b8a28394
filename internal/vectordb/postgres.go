package vectordb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"onboard-ai/internal/models"
)

// EmbeddingRow is one stored chunk in the pgvector-backed store. The
// collection column takes the place of chromem's named collections.
type EmbeddingRow struct {
	bun.BaseModel `bun:"table:workspace_embeddings,alias:we"`

	ID         string            `bun:"id,pk"`
	Collection string            `bun:"collection,notnull"`
	SourceID   string            `bun:"source_id,notnull"`
	Content    string            `bun:"content,notnull"`
	Metadata   map[string]string `bun:"metadata,type:jsonb"`
	Embedding  string            `bun:"embedding,notnull,type:vector(768)"`
	Similarity float32           `bun:"similarity,scanonly"`
}

// PostgresStore implements Store on Postgres with the pgvector extension.
type PostgresStore struct {
	db *bun.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects with bun over pgdriver and ensures the
// embeddings table exists. The vector extension must be installed.
func NewPostgresStore(ctx context.Context, dsn string, debug bool) (*PostgresStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if _, err := db.NewCreateTable().Model((*EmbeddingRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to create embeddings table: %v", models.ErrVectorStore, err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) EnsureCollection(ctx context.Context, collectionName string) error {
	// Collections are rows sharing a collection value; nothing to create.
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, collectionName string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]EmbeddingRow, len(records))
	for i, record := range records {
		rows[i] = EmbeddingRow{
			ID:         record.ID,
			Collection: collectionName,
			SourceID:   record.Metadata[models.MetaSourceID],
			Content:    record.Content,
			Metadata:   record.Metadata,
			Embedding:  vectorLiteral(record.Embedding),
		}
	}
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("collection = EXCLUDED.collection").
		Set("source_id = EXCLUDED.source_id").
		Set("content = EXCLUDED.content").
		Set("metadata = EXCLUDED.metadata").
		Set("embedding = EXCLUDED.embedding").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to store records: %v", models.ErrVectorStore, err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, collectionName string, embedding []float32, topK int) ([]Result, error) {
	var rows []EmbeddingRow
	err := s.db.NewSelect().
		Model(&rows).
		Column("content", "metadata").
		ColumnExpr("1 - (embedding <=> ?) AS similarity", vectorLiteral(embedding)).
		Where("collection = ?", collectionName).
		OrderExpr("embedding <=> ?", vectorLiteral(embedding)).
		Limit(topK).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query collection %s: %v", models.ErrVectorStore, collectionName, err)
	}

	results := make([]Result, len(rows))
	for i, row := range rows {
		results[i] = Result{
			Content:    row.Content,
			Metadata:   row.Metadata,
			Similarity: row.Similarity,
		}
	}
	return results, nil
}

func (s *PostgresStore) DeleteBySource(ctx context.Context, collectionName, sourceID string) error {
	_, err := s.db.NewDelete().
		Model((*EmbeddingRow)(nil)).
		Where("collection = ?", collectionName).
		Where("source_id = ?", sourceID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to delete source %s: %v", models.ErrVectorStore, sourceID, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// vectorLiteral renders a vector in pgvector's input format, e.g. [1,2,3].
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
