package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/docquery/docquery/helper"
	"github.com/docquery/docquery/model"
	loadSql "github.com/docquery/docquery/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(chunk *model.Chunk) error
	SelectChunksByDocument(documentID int64) ([]*model.Chunk, error)
	CountChunksByDocument(documentID int64) (int, error)
	SelectChunksBySimilarity(documentID int64, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error)
	DeleteChunksByDocument(documentID int64) error
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It initializes the database connection and loads chunk-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary extensions and indexes.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing chunks table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a new chunk
func (h *ChunksDBHandler) InsertChunk(chunk *model.Chunk) error {
	entitiesJSON, err := json.Marshal(chunk.Entities)
	if err != nil {
		return helper.NewError("marshal entities", err)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		chunk.DocumentID,
		chunk.ID,
		chunk.Content,
		chunk.Type,
		pq.Array(chunk.Embedding),
		chunk.StartLine,
		chunk.EndLine,
		chunk.LineCount,
		entitiesJSON,
		chunk.Metadata,
	)

	var rowID int64
	var createdAt time.Time
	if err := scanChunk(row.Scan, chunk, &rowID, &createdAt, nil); err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectChunksByDocument retrieves all chunks of a document in document order
func (h *ChunksDBHandler) SelectChunksByDocument(documentID int64) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_document($1)`,
		documentID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		var rowID int64
		var createdAt time.Time
		if err := scanChunk(rows.Scan, chunk, &rowID, &createdAt, nil); err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// CountChunksByDocument returns the number of chunks stored for a document
func (h *ChunksDBHandler) CountChunksByDocument(documentID int64) (int, error) {
	var count int
	err := h.db.Instance.QueryRow(
		`SELECT count_chunks_by_document($1)`,
		documentID,
	).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// SelectChunksBySimilarity retrieves chunks ranked by cosine similarity to the
// query embedding, filtered by the similarity threshold
func (h *ChunksDBHandler) SelectChunksBySimilarity(documentID int64, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error) {
	embeddingVector := pgvector.NewVector(embedding)
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3, $4)`,
		documentID,
		embeddingVector,
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		var rowID int64
		var createdAt time.Time
		if err := scanChunk(rows.Scan, chunk, &rowID, &createdAt, &chunk.Similarity); err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// DeleteChunksByDocument deletes all chunks of a document
func (h *ChunksDBHandler) DeleteChunksByDocument(documentID int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_chunks_by_document($1)`,
		documentID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// scanChunk scans one chunk row. The row id is surrogate; the chunk keeps its
// document-order index as ID. similarity is non-nil for similarity queries.
func scanChunk(scan func(dest ...any) error, chunk *model.Chunk, rowID *int64, createdAt *time.Time, similarity *float64) error {
	var entitiesJSON []byte

	dest := []any{
		rowID,
		&chunk.DocumentID,
		&chunk.ID,
		&chunk.Content,
		&chunk.Type,
		pq.Array(&chunk.Embedding),
		&chunk.StartLine,
		&chunk.EndLine,
		&chunk.LineCount,
		&entitiesJSON,
		&chunk.Metadata,
		createdAt,
	}
	if similarity != nil {
		dest = append(dest, similarity)
	}

	if err := scan(dest...); err != nil {
		return err
	}

	if len(entitiesJSON) > 0 {
		if err := json.Unmarshal(entitiesJSON, &chunk.Entities); err != nil {
			return err
		}
	}
	if len(chunk.Entities) == 0 {
		chunk.Entities = nil
	}
	return nil
}
