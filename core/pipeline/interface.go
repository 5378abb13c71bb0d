package pipeline

import "github.com/docquery/docquery/model"

// ChunkFunc splits document text into typed chunks in document order
type ChunkFunc func(text string) ([]*model.Chunk, error)

// EmbedFunc generates an embedding vector for text
type EmbedFunc func(text string) ([]float32, error)

// Pipeline combines chunking and embedding for document ingestion
type Pipeline struct {
	Chunker  ChunkFunc
	Embedder EmbedFunc
}

// NewPipeline creates a new ingestion pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// Process splits text into chunks and embeds each one. Embedding is best
// effort: if the embedder is unset or starts failing, the remaining chunks are
// returned without embeddings and retrieval degrades to keyword ranking.
func (p *Pipeline) Process(text string) ([]*model.Chunk, error) {
	chunks, err := p.Chunker(text)
	if err != nil {
		return nil, err
	}

	embedderDown := p.Embedder == nil
	for _, chunk := range chunks {
		if embedderDown {
			continue
		}
		embedding, err := p.Embedder(chunk.Content)
		if err != nil {
			embedderDown = true
			continue
		}
		chunk.Embedding = embedding
	}

	return chunks, nil
}
