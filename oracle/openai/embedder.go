package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// Embedder produces vector embeddings via the OpenAI embeddings endpoint.
// It satisfies the pgvector store's Embedder interface.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewEmbedder creates an Embedder; an empty model selects
// text-embedding-3-small.
func NewEmbedder(client *openai.Client, model openai.EmbeddingModel) *Embedder {
	if model == "" {
		model = openai.EmbeddingModelTextEmbedding3Small
	}
	return &Embedder{client: client, model: model}
}

// Embed returns the embedding vector for one text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: e.model,
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings: empty response")
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
