package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/docquery/docquery/database"
	"github.com/docquery/docquery/helper"
	"github.com/docquery/docquery/model"
	loadSql "github.com/docquery/docquery/sql"
)

// PostgresStore persists the loaded document and its chunks in Postgres with
// pgvector similarity search. Reloading a document replaces its chunks.
type PostgresStore struct {
	mu        sync.RWMutex
	documents database.DocumentsDBHandlerFunctions
	chunks    database.ChunksDBHandlerFunctions
	doc       *model.Document
}

// NewPostgresStore creates a Postgres-backed chunk store on an open database
// connection, initializing extensions, functions and tables as needed.
// embeddingDim fixes the vector column dimension.
func NewPostgresStore(db *helper.Database, embeddingDim int) (*PostgresStore, error) {
	if db == nil {
		return nil, helper.NewError("new postgres store", fmt.Errorf("database connection is nil"))
	}

	if err := loadSql.Init(db.Instance); err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	documentsDbHandler, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("new documents handler", err)
	}

	chunksDbHandler, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("new chunks handler", err)
	}

	return &PostgresStore{
		documents: documentsDbHandler,
		chunks:    chunksDbHandler,
	}, nil
}

// ReplaceChunks swaps the stored collection for a freshly loaded document.
// The document is inserted first so chunks can reference it; any previous
// chunks of the same document are removed.
func (s *PostgresStore) ReplaceChunks(ctx context.Context, doc *model.Document, chunks []*model.Chunk) error {
	if doc == nil {
		return helper.NewError("replace chunks", fmt.Errorf("document is nil"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == 0 {
		if err := s.documents.InsertDocument(doc); err != nil {
			return helper.NewError("insert document", err)
		}
	} else if err := s.chunks.DeleteChunksByDocument(doc.ID); err != nil {
		return helper.NewError("delete chunks", err)
	}

	for _, chunk := range chunks {
		chunk.DocumentID = doc.ID
		if err := s.chunks.InsertChunk(chunk); err != nil {
			return helper.NewError("insert chunk", err)
		}
	}

	s.doc = doc
	return nil
}

// Document returns the currently loaded document, or nil
func (s *PostgresStore) Document() *model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// AllChunks returns every chunk of the loaded document in document order
func (s *PostgresStore) AllChunks(ctx context.Context) ([]*model.Chunk, error) {
	doc := s.Document()
	if doc == nil {
		return nil, nil
	}

	chunks, err := s.chunks.SelectChunksByDocument(doc.ID)
	if err != nil {
		return nil, helper.NewError("select chunks", err)
	}
	return chunks, nil
}

// ChunkCount returns the number of stored chunks of the loaded document
func (s *PostgresStore) ChunkCount(ctx context.Context) (int, error) {
	doc := s.Document()
	if doc == nil {
		return 0, nil
	}

	count, err := s.chunks.CountChunksByDocument(doc.ID)
	if err != nil {
		return 0, helper.NewError("count chunks", err)
	}
	return count, nil
}

// SimilarChunks ranks the loaded document's chunks by cosine similarity to the
// query embedding. Chunks without an embedding are excluded.
func (s *PostgresStore) SimilarChunks(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error) {
	if len(embedding) == 0 {
		return nil, helper.NewError("similarity search", fmt.Errorf("query embedding is empty"))
	}

	doc := s.Document()
	if doc == nil {
		return nil, nil
	}

	chunks, err := s.chunks.SelectChunksBySimilarity(doc.ID, embedding, limit, threshold)
	if err != nil {
		return nil, helper.NewError("select chunks by similarity", err)
	}
	return chunks, nil
}
