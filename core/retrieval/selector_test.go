package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery/docquery/model"
	"github.com/docquery/docquery/store"
)

func newTestStore(t *testing.T, chunks []*model.Chunk) *store.MemoryStore {
	t.Helper()
	memory := store.NewMemoryStore()
	err := memory.ReplaceChunks(context.Background(), &model.Document{Title: "test"}, chunks)
	require.NoError(t, err)
	return memory
}

func TestSelectorCounting(t *testing.T) {
	t.Run("Structured and tabular chunks selected first", func(t *testing.T) {
		memory := newTestStore(t, []*model.Chunk{
			{ID: 0, Content: "Narrative intro.", Type: model.ContentTypeText},
			{ID: 1, Content: "1234567890 complaint", Type: model.ContentTypeStructured},
			{ID: 2, Content: "a, b, c, d", Type: model.ContentTypeTabular},
		})
		selector := NewSelector(memory, nil, nil, nil)

		evidence, err := selector.Select(context.Background(), "how many complaints", &model.Classification{PrimaryType: model.QueryTypeCounting})

		require.NoError(t, err)
		assert.True(t, evidence.Contains(1))
		assert.True(t, evidence.Contains(2))
	})

	t.Run("Entity bearing chunks included", func(t *testing.T) {
		memory := newTestStore(t, []*model.Chunk{
			{ID: 0, Content: "Israel complaint one.", Type: model.ContentTypeText, Entities: map[string]int{"israel": 1}},
			{ID: 1, Content: "Unrelated narrative.", Type: model.ContentTypeText},
		})
		selector := NewSelector(memory, nil, nil, nil)

		evidence, err := selector.Select(context.Background(), "how many complaints from israel", &model.Classification{
			PrimaryType:    model.QueryTypeCounting,
			EntityKeywords: []string{"israel"},
		})

		require.NoError(t, err)
		assert.True(t, evidence.Contains(0))
	})

	t.Run("Cap respected", func(t *testing.T) {
		var chunks []*model.Chunk
		for i := 0; i < 40; i++ {
			chunks = append(chunks, &model.Chunk{ID: i, Content: "1234567890 record", Type: model.ContentTypeStructured})
		}
		memory := newTestStore(t, chunks)
		selector := NewSelector(memory, nil, nil, nil)

		evidence, err := selector.Select(context.Background(), "count records", &model.Classification{PrimaryType: model.QueryTypeCounting})

		require.NoError(t, err)
		assert.Equal(t, model.DefaultPipelineConfig().MaxChunksCounting, evidence.Size())
	})

	t.Run("Entity chunk survives a document full of structured data", func(t *testing.T) {
		limit := model.DefaultPipelineConfig().MaxChunksCounting
		var chunks []*model.Chunk
		for i := 0; i < limit+5; i++ {
			chunks = append(chunks, &model.Chunk{ID: i, Content: "1234567890 record", Type: model.ContentTypeStructured})
		}
		entityChunk := &model.Chunk{
			ID:       limit + 5,
			Content:  "One complaint was filed from Israel.",
			Type:     model.ContentTypeText,
			Entities: map[string]int{"israel": 1},
		}
		chunks = append(chunks, entityChunk)
		memory := newTestStore(t, chunks)
		selector := NewSelector(memory, nil, nil, nil)

		evidence, err := selector.Select(context.Background(), "how many complaints from israel", &model.Classification{
			PrimaryType:    model.QueryTypeCounting,
			EntityKeywords: []string{"israel"},
		})

		require.NoError(t, err)
		assert.Equal(t, limit, evidence.Size())
		assert.True(t, evidence.Contains(entityChunk.ID), "entity-bearing chunk must not be crowded out by structured chunks")
	})

	t.Run("Chunks with unrelated entities are not prioritized", func(t *testing.T) {
		memory := newTestStore(t, []*model.Chunk{
			{ID: 0, Content: "Germany complaint.", Type: model.ContentTypeText, Entities: map[string]int{"germany": 1}},
			{ID: 1, Content: "Israel complaint.", Type: model.ContentTypeText, Entities: map[string]int{"israel": 1}},
			{ID: 2, Content: "1234567890 record", Type: model.ContentTypeStructured},
		})
		selector := NewSelector(memory, nil, nil, nil)

		evidence, err := selector.Select(context.Background(), "how many complaints from israel", &model.Classification{
			PrimaryType:    model.QueryTypeCounting,
			EntityKeywords: []string{"israel"},
		})

		require.NoError(t, err)
		require.GreaterOrEqual(t, evidence.Size(), 2)
		first := evidence.Chunks()[0]
		assert.Equal(t, 1, first.ID, "target-entity chunk must be selected before structured data")
		assert.False(t, evidence.Contains(0), "chunk with only unrelated entities is not entity evidence")
	})

	t.Run("Prose only document still yields evidence", func(t *testing.T) {
		memory := newTestStore(t, []*model.Chunk{
			{ID: 0, Content: "Only prose here.", Type: model.ContentTypeText},
		})
		selector := NewSelector(memory, nil, nil, nil)

		evidence, err := selector.Select(context.Background(), "how many things", &model.Classification{PrimaryType: model.QueryTypeCounting})

		require.NoError(t, err)
		assert.Equal(t, 1, evidence.Size())
	})
}

func TestSelectorSimilarity(t *testing.T) {
	// Embeddings on one axis so ranking is obvious
	embedFor := map[string][]float32{
		"pump failure in Israel":  {1, 0},
		"valve leak in Germany":   {0, 1},
		"shipping note, no issue": {0.1, 0.1},
	}

	stubEmbedder := func(text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	chunksWithEmbeddings := func() []*model.Chunk {
		var chunks []*model.Chunk
		id := 0
		for content, embedding := range embedFor {
			chunks = append(chunks, &model.Chunk{ID: id, Content: content, Type: model.ContentTypeText, Embedding: embedding})
			id++
		}
		return chunks
	}

	t.Run("Similarity floor filters weak matches", func(t *testing.T) {
		memory := newTestStore(t, chunksWithEmbeddings())
		selector := NewSelector(memory, stubEmbedder, nil, nil)

		evidence, err := selector.Select(context.Background(), "pump failure", &model.Classification{PrimaryType: model.QueryTypeSearch})

		require.NoError(t, err)
		require.Greater(t, evidence.Size(), 0)
		for _, chunk := range evidence.Chunks() {
			assert.GreaterOrEqual(t, chunk.Similarity, model.DefaultPipelineConfig().SearchThreshold)
		}
	})

	t.Run("Analysis cap larger than search cap", func(t *testing.T) {
		var chunks []*model.Chunk
		for i := 0; i < 30; i++ {
			chunks = append(chunks, &model.Chunk{ID: i, Content: "pump note", Type: model.ContentTypeText, Embedding: []float32{1, 0}})
		}
		memory := newTestStore(t, chunks)
		selector := NewSelector(memory, stubEmbedder, nil, nil)

		analysis, err := selector.Select(context.Background(), "analyze pumps", &model.Classification{PrimaryType: model.QueryTypeAnalysis})
		require.NoError(t, err)
		search, err := selector.Select(context.Background(), "find pumps", &model.Classification{PrimaryType: model.QueryTypeSearch})
		require.NoError(t, err)

		assert.Equal(t, model.DefaultPipelineConfig().MaxChunksAnalysis, analysis.Size())
		assert.Equal(t, model.DefaultPipelineConfig().MaxChunksSearch, search.Size())
	})
}

func TestSelectorAnalysisDiversity(t *testing.T) {
	stubEmbedder := func(text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	t.Run("Missing content types are topped up after similarity", func(t *testing.T) {
		chunks := []*model.Chunk{
			{ID: 0, Content: "Trend narrative.", Type: model.ContentTypeText, Embedding: []float32{1, 0}},
			{ID: 1, Content: "More narrative.", Type: model.ContentTypeText, Embedding: []float32{1, 0}},
			// Structured data without embeddings never matches by similarity
			{ID: 2, Content: "1234567890 complaint", Type: model.ContentTypeStructured},
			{ID: 3, Content: "QE-123 complaint", Type: model.ContentTypeStructured},
		}
		memory := newTestStore(t, chunks)
		selector := NewSelector(memory, stubEmbedder, nil, nil)

		evidence, err := selector.Select(context.Background(), "analyze complaint trends", &model.Classification{PrimaryType: model.QueryTypeAnalysis})

		require.NoError(t, err)
		assert.True(t, evidence.Contains(2), "structured chunks must be sampled even without similarity match")
		assert.True(t, evidence.Contains(3))
		counts := evidence.TypeCounts()
		assert.Greater(t, counts[model.ContentTypeText], 0)
		assert.Greater(t, counts[model.ContentTypeStructured], 0)
	})

	t.Run("Top up per content type is bounded", func(t *testing.T) {
		chunks := []*model.Chunk{
			{ID: 0, Content: "Narrative.", Type: model.ContentTypeText, Embedding: []float32{1, 0}},
		}
		for i := 1; i <= 12; i++ {
			chunks = append(chunks, &model.Chunk{ID: i, Content: "1234567890 record", Type: model.ContentTypeStructured})
		}
		memory := newTestStore(t, chunks)
		selector := NewSelector(memory, stubEmbedder, nil, nil)

		evidence, err := selector.Select(context.Background(), "analyze records", &model.Classification{PrimaryType: model.QueryTypeAnalysis})

		require.NoError(t, err)
		assert.Equal(t, analysisTypeFill, evidence.TypeCounts()[model.ContentTypeStructured])
	})

	t.Run("Represented content types are not topped up", func(t *testing.T) {
		chunks := []*model.Chunk{
			{ID: 0, Content: "Matching narrative.", Type: model.ContentTypeText, Embedding: []float32{1, 0}},
			{ID: 1, Content: "Unmatched narrative.", Type: model.ContentTypeText, Embedding: []float32{0, 1}},
		}
		memory := newTestStore(t, chunks)
		selector := NewSelector(memory, stubEmbedder, nil, nil)

		evidence, err := selector.Select(context.Background(), "analyze the narrative", &model.Classification{PrimaryType: model.QueryTypeAnalysis})

		require.NoError(t, err)
		assert.True(t, evidence.Contains(0))
		assert.False(t, evidence.Contains(1), "text is already represented, no top up for dissimilar text chunks")
	})
}

func TestSelectorKeywordFallback(t *testing.T) {
	chunks := []*model.Chunk{
		{ID: 0, Content: "Shipping notes without relevance.", Type: model.ContentTypeText},
		{ID: 1, Content: "Pump failure reported, pump replaced.", Type: model.ContentTypeText},
		{ID: 2, Content: "Valve leak near the pump housing.", Type: model.ContentTypeText},
	}

	t.Run("Overlap ranking is deterministic", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			memory := newTestStore(t, chunks)
			selector := NewSelector(memory, nil, nil, nil)

			evidence, err := selector.Select(context.Background(), "pump failure", &model.Classification{PrimaryType: model.QueryTypeSearch})

			require.NoError(t, err)
			require.Greater(t, evidence.Size(), 0)
			assert.Equal(t, 1, evidence.Chunks()[0].ID, "chunk with both tokens must rank first")
		}
	})

	t.Run("No overlap still returns chunks in document order", func(t *testing.T) {
		memory := newTestStore(t, chunks)
		selector := NewSelector(memory, nil, nil, nil)

		evidence, err := selector.Select(context.Background(), "unrelated topic entirely", &model.Classification{PrimaryType: model.QueryTypeSearch})

		require.NoError(t, err)
		require.Equal(t, len(chunks), evidence.Size())
		assert.Equal(t, 0, evidence.Chunks()[0].ID)
	})

	t.Run("Empty store yields empty evidence without error", func(t *testing.T) {
		memory := newTestStore(t, nil)
		selector := NewSelector(memory, nil, nil, nil)

		evidence, err := selector.Select(context.Background(), "anything", &model.Classification{PrimaryType: model.QueryTypeSearch})

		require.NoError(t, err)
		assert.Equal(t, 0, evidence.Size())
	})

	t.Run("Short and stopword tokens are ignored", func(t *testing.T) {
		tokens := queryTokens("How many of the pump failures are there?")

		assert.Contains(t, tokens, "pump")
		assert.Contains(t, tokens, "failures")
		assert.NotContains(t, tokens, "how")
		assert.NotContains(t, tokens, "of")
		assert.NotContains(t, tokens, "the")
	})
}

func TestStrategyFor(t *testing.T) {
	t.Run("Each query type maps to a strategy", func(t *testing.T) {
		assert.IsType(t, &CountingStrategy{}, StrategyFor(model.QueryTypeCounting))
		assert.IsType(t, &AnalysisStrategy{}, StrategyFor(model.QueryTypeAnalysis))
		assert.IsType(t, &SearchStrategy{}, StrategyFor(model.QueryTypeSearch))
		assert.IsType(t, &SearchStrategy{}, StrategyFor(model.QueryTypeGeneral))
	})
}

func TestQueryTokens(t *testing.T) {
	t.Run("Punctuation trimmed and lowercased", func(t *testing.T) {
		tokens := queryTokens("Find 'Israel', please!")

		assert.Contains(t, tokens, "israel")
		assert.Contains(t, tokens, "please")
		assert.False(t, strings.ContainsAny(strings.Join(tokens, ""), "',!"))
	})
}
