package model

// ContentType tags the detected shape of a chunk's lines
type ContentType string

const (
	ContentTypeStructured ContentType = "structured_data"
	ContentTypeTabular    ContentType = "tabular"
	ContentTypeHeader     ContentType = "header"
	ContentTypeText       ContentType = "text"
)

// Chunk is an immutable slice of the loaded document.
// Chunks are created once at load time and only read afterwards.
type Chunk struct {
	ID         int            `json:"id"`
	DocumentID int64          `json:"document_id,omitempty"`
	Content    string         `json:"content"`
	Type       ContentType    `json:"type"`
	Embedding  []float32      `json:"embedding,omitempty"`
	StartLine  int            `json:"start_line"`
	EndLine    int            `json:"end_line"`
	LineCount  int            `json:"line_count"`
	Entities   map[string]int `json:"entities,omitempty"`
	Metadata   Metadata       `json:"metadata,omitempty"`
	// Result field, populated by retrieval
	Similarity float64 `json:"similarity,omitempty"`
}

// EvidenceSet is an ordered, deduplicated selection of chunks bound to one (sub)query
type EvidenceSet struct {
	chunks []*Chunk
	seen   map[int]bool
}

// NewEvidenceSet creates an empty evidence set
func NewEvidenceSet() *EvidenceSet {
	return &EvidenceSet{seen: map[int]bool{}}
}

// Add appends a chunk unless it is already in the set. Reports whether it was added.
func (e *EvidenceSet) Add(chunk *Chunk) bool {
	if chunk == nil || e.seen[chunk.ID] {
		return false
	}
	e.seen[chunk.ID] = true
	e.chunks = append(e.chunks, chunk)
	return true
}

// Size returns the number of chunks in the set
func (e *EvidenceSet) Size() int {
	return len(e.chunks)
}

// Chunks returns the selected chunks in selection order
func (e *EvidenceSet) Chunks() []*Chunk {
	return e.chunks
}

// Contents returns the raw text of every chunk in selection order
func (e *EvidenceSet) Contents() []string {
	contents := make([]string, len(e.chunks))
	for i, c := range e.chunks {
		contents[i] = c.Content
	}
	return contents
}

// Contains reports whether a chunk with the given id is in the set
func (e *EvidenceSet) Contains(id int) bool {
	return e.seen[id]
}

// TypeCounts returns the number of selected chunks per content type
func (e *EvidenceSet) TypeCounts() map[ContentType]int {
	counts := map[ContentType]int{}
	for _, c := range e.chunks {
		counts[c.Type]++
	}
	return counts
}
