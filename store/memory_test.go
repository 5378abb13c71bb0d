package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery/docquery/model"
)

func testChunks() []*model.Chunk {
	return []*model.Chunk{
		{ID: 0, Content: "first", Type: model.ContentTypeText, Embedding: []float32{1, 0, 0}},
		{ID: 1, Content: "second", Type: model.ContentTypeText, Embedding: []float32{0, 1, 0}},
		{ID: 2, Content: "third", Type: model.ContentTypeText},
	}
}

func TestMemoryStoreReplaceChunks(t *testing.T) {
	memory := NewMemoryStore()
	ctx := context.Background()

	t.Run("Nil document is rejected", func(t *testing.T) {
		err := memory.ReplaceChunks(ctx, nil, testChunks())
		assert.Error(t, err)
	})

	t.Run("Replace swaps the whole collection", func(t *testing.T) {
		err := memory.ReplaceChunks(ctx, &model.Document{Title: "first"}, testChunks())
		require.NoError(t, err)

		count, err := memory.ChunkCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		err = memory.ReplaceChunks(ctx, &model.Document{Title: "second"}, testChunks()[:1])
		require.NoError(t, err)

		count, err = memory.ChunkCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, "second", memory.Document().Title)
	})
}

func TestMemoryStoreAllChunks(t *testing.T) {
	memory := NewMemoryStore()
	err := memory.ReplaceChunks(context.Background(), &model.Document{Title: "doc"}, testChunks())
	require.NoError(t, err)

	chunks, err := memory.AllChunks(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ID, "Expected chunks in document order")
	}
}

func TestMemoryStoreSimilarChunks(t *testing.T) {
	memory := NewMemoryStore()
	err := memory.ReplaceChunks(context.Background(), &model.Document{Title: "doc"}, testChunks())
	require.NoError(t, err)

	t.Run("Empty embedding is rejected", func(t *testing.T) {
		_, err := memory.SimilarChunks(context.Background(), nil, 10, 0)
		assert.Error(t, err)
	})

	t.Run("Most similar chunk ranks first", func(t *testing.T) {
		chunks, err := memory.SimilarChunks(context.Background(), []float32{0, 1, 0}, 10, 0.5)
		require.NoError(t, err)
		require.NotEmpty(t, chunks)
		assert.Equal(t, 1, chunks[0].ID)
		assert.InDelta(t, 1.0, chunks[0].Similarity, 0.001)
	})

	t.Run("Threshold excludes chunks without embedding", func(t *testing.T) {
		chunks, err := memory.SimilarChunks(context.Background(), []float32{1, 0, 0}, 10, 0.5)
		require.NoError(t, err)
		for _, chunk := range chunks {
			assert.NotEqual(t, 2, chunk.ID, "Expected embedding-less chunks below threshold")
		}
	})

	t.Run("Limit caps result size", func(t *testing.T) {
		chunks, err := memory.SimilarChunks(context.Background(), []float32{1, 1, 0}, 1, 0)
		require.NoError(t, err)
		assert.Len(t, chunks, 1)
	})

	t.Run("Ranking does not mutate stored chunks", func(t *testing.T) {
		_, err := memory.SimilarChunks(context.Background(), []float32{0, 1, 0}, 10, 0)
		require.NoError(t, err)

		chunks, err := memory.AllChunks(context.Background())
		require.NoError(t, err)
		for _, chunk := range chunks {
			assert.Zero(t, chunk.Similarity, "Expected similarity scores on copies only")
		}
	})
}

func TestMemoryStoreConcurrentReads(t *testing.T) {
	memory := NewMemoryStore()
	err := memory.ReplaceChunks(context.Background(), &model.Document{Title: "doc"}, testChunks())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := memory.AllChunks(context.Background())
			assert.NoError(t, err)
			_, err = memory.SimilarChunks(context.Background(), []float32{1, 0, 0}, 2, 0)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
