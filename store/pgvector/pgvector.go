// Package pgvector implements store.DocumentStore on PostgreSQL with the
// pgvector extension. Documents are stored per collection with their source
// metadata as JSONB and queried by cosine distance over embeddings.
package pgvector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/agenthub/agenthub/core"
)

// Embedder turns text into the vector representation stored alongside each
// document. The query path and the indexing path must share one embedder so
// distances are comparable.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is a pgvector-backed document store. It is safe for concurrent use;
// the underlying pool handles connection management.
type Store struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

// New creates a Store over an existing connection pool.
func New(pool *pgxpool.Pool, embedder Embedder) *Store {
	return &Store{pool: pool, embedder: embedder}
}

// Search implements store.DocumentStore via cosine-distance ranking.
func (s *Store) Search(ctx context.Context, collection, query string, k int) ([]core.Document, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT content, metadata
		   FROM documents
		  WHERE collection = $1
		  ORDER BY embedding <=> $2
		  LIMIT $3`,
		collection, pgv.NewVector(embedding), k,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search in %q: %w", collection, err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		var content string
		var rawMeta []byte
		if err := rows.Scan(&content, &rawMeta); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		doc := core.Document{Content: content}
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("decode document metadata: %w", err)
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// Add indexes a document into a collection, embedding its content.
func (s *Store) Add(ctx context.Context, collection string, doc core.Document) error {
	embedding, err := s.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("embed document: %w", err)
	}
	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encode document metadata: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, content, metadata, embedding)
		 VALUES ($1, $2, $3, $4)`,
		collection, doc.Content, meta, pgv.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}
