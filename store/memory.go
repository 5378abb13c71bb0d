package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/docquery/docquery/core/pipeline"
	"github.com/docquery/docquery/helper"
	"github.com/docquery/docquery/model"
)

// MemoryStore keeps the loaded document's chunks in memory.
// It is the default ChunkSource; reads are safe under concurrent runs.
type MemoryStore struct {
	mu     sync.RWMutex
	doc    *model.Document
	chunks []*model.Chunk
}

// NewMemoryStore creates an empty in-memory chunk store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// ReplaceChunks swaps the stored collection for a freshly loaded document
func (s *MemoryStore) ReplaceChunks(ctx context.Context, doc *model.Document, chunks []*model.Chunk) error {
	if doc == nil {
		return helper.NewError("replace chunks", fmt.Errorf("document is nil"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.chunks = chunks
	return nil
}

// Document returns the currently loaded document, or nil
func (s *MemoryStore) Document() *model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// AllChunks returns every chunk in document order
func (s *MemoryStore) AllChunks(ctx context.Context) ([]*model.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

// ChunkCount returns the number of stored chunks
func (s *MemoryStore) ChunkCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// SimilarChunks ranks all stored chunks by cosine similarity to the query
// embedding. Chunks without an embedding rank at similarity zero.
func (s *MemoryStore) SimilarChunks(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error) {
	if len(embedding) == 0 {
		return nil, helper.NewError("similarity search", fmt.Errorf("query embedding is empty"))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]*model.Chunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		similarity := float64(pipeline.CosineSimilarity(embedding, chunk.Embedding))
		if similarity < threshold {
			continue
		}
		scored := *chunk
		scored.Similarity = similarity
		ranked = append(ranked, &scored)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
