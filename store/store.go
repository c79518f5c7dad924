package store

import (
	"context"

	"github.com/agenthub/agenthub/core"
)

// DocumentStore wraps similarity search over a named collection, returning
// the top-k documents ranked by similarity. A store failure must surface as
// an error, never as an empty result, so infrastructure problems are not
// mistaken for "no relevant documents".
type DocumentStore interface {
	Search(ctx context.Context, collection, query string, k int) ([]core.Document, error)
}

// WebSearcher is the web search fallback. Results are appended to, not
// merged with, the documents already held by the turn.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]core.Document, error)
}

// WebSearcherFunc adapts a plain function to WebSearcher.
type WebSearcherFunc func(ctx context.Context, query string) ([]core.Document, error)

// Search calls f.
func (f WebSearcherFunc) Search(ctx context.Context, query string) ([]core.Document, error) {
	return f(ctx, query)
}
