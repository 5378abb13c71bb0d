// Package store provides read-only access to the chunks of the loaded document.
package store

import (
	"context"

	"github.com/docquery/docquery/model"
)

// ChunkSource is the read-only chunk collection shared by all runs
type ChunkSource interface {
	// AllChunks returns every chunk in document order
	AllChunks(ctx context.Context) ([]*model.Chunk, error)
	// ChunkCount returns the number of stored chunks
	ChunkCount(ctx context.Context) (int, error)
	// SimilarChunks returns up to limit chunks ranked by cosine similarity to
	// the query embedding, each with its Similarity result field populated.
	// Chunks below threshold are excluded.
	SimilarChunks(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error)
}

// ChunkWriter is implemented by sources that accept chunks at document load time
type ChunkWriter interface {
	// ReplaceChunks swaps the stored collection for a freshly loaded document
	ReplaceChunks(ctx context.Context, doc *model.Document, chunks []*model.Chunk) error
}
