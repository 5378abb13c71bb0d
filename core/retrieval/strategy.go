package retrieval

import (
	"context"

	"github.com/docquery/docquery/model"
)

// Strategy defines how evidence is gathered for one query type
type Strategy interface {
	Retrieve(ctx context.Context, selector *Selector, text string, classification *model.Classification) (*model.EvidenceSet, error)
}

// StrategyFor maps a query type to its evidence strategy
func StrategyFor(queryType model.QueryType) Strategy {
	switch queryType {
	case model.QueryTypeCounting:
		return &CountingStrategy{}
	case model.QueryTypeAnalysis:
		return &AnalysisStrategy{}
	default:
		return &SearchStrategy{}
	}
}

// CountingStrategy gathers evidence for exhaustive enumeration. Chunks
// mentioning a detected target entity are selected first so they can never be
// crowded out, then structured and tabular data, and any remaining capacity is
// filled by similarity so the count stays complete.
type CountingStrategy struct{}

// Retrieve performs counting-oriented retrieval
func (s *CountingStrategy) Retrieve(ctx context.Context, selector *Selector, text string, classification *model.Classification) (*model.EvidenceSet, error) {
	limit := selector.config.MaxChunksCounting
	evidence := model.NewEvidenceSet()

	chunks, err := selector.source.AllChunks(ctx)
	if err != nil {
		return nil, err
	}

	for _, chunk := range chunks {
		if evidence.Size() >= limit {
			break
		}
		if mentionsAnyEntity(chunk, classification.EntityKeywords) {
			evidence.Add(chunk)
		}
	}

	for _, chunk := range chunks {
		if evidence.Size() >= limit {
			break
		}
		if chunk.Type == model.ContentTypeStructured || chunk.Type == model.ContentTypeTabular {
			evidence.Add(chunk)
		}
	}

	if evidence.Size() < limit {
		similar, err := selector.similar(ctx, text, limit, selector.config.CountingFillThreshold)
		if err != nil {
			return nil, err
		}
		for _, chunk := range similar {
			if evidence.Size() >= limit {
				break
			}
			evidence.Add(chunk)
		}
	}

	// Small documents are counted in full
	if evidence.Size() == 0 {
		for _, chunk := range chunks {
			if evidence.Size() >= limit {
				break
			}
			evidence.Add(chunk)
		}
	}

	return evidence, nil
}

// analysisTypeFill bounds how many chunks of one missing content type are
// added when diversifying an analysis evidence set
const analysisTypeFill = 10

// AnalysisStrategy gathers a mid-sized set of semantically related chunks and
// tops it up with content types the similarity pass missed, so the sample
// spans the document's sections instead of a single one.
type AnalysisStrategy struct{}

// Retrieve performs analysis-oriented retrieval
func (s *AnalysisStrategy) Retrieve(ctx context.Context, selector *Selector, text string, classification *model.Classification) (*model.EvidenceSet, error) {
	limit := selector.config.MaxChunksAnalysis
	evidence, err := retrieveBySimilarity(ctx, selector, text, limit, selector.config.AnalysisThreshold)
	if err != nil {
		return nil, err
	}

	chunks, err := selector.source.AllChunks(ctx)
	if err != nil {
		return nil, err
	}

	represented := evidence.TypeCounts()
	for _, contentType := range []model.ContentType{model.ContentTypeStructured, model.ContentTypeTabular, model.ContentTypeText} {
		if represented[contentType] > 0 {
			continue
		}
		added := 0
		for _, chunk := range chunks {
			if evidence.Size() >= limit || added >= analysisTypeFill {
				break
			}
			if chunk.Type == contentType && evidence.Add(chunk) {
				added++
			}
		}
	}

	return evidence, nil
}

// SearchStrategy gathers a small, precise set of matching chunks.
// It also serves general queries.
type SearchStrategy struct{}

// Retrieve performs search-oriented retrieval
func (s *SearchStrategy) Retrieve(ctx context.Context, selector *Selector, text string, classification *model.Classification) (*model.EvidenceSet, error) {
	return retrieveBySimilarity(ctx, selector, text, selector.config.MaxChunksSearch, selector.config.SearchThreshold)
}

func retrieveBySimilarity(ctx context.Context, selector *Selector, text string, limit int, threshold float64) (*model.EvidenceSet, error) {
	evidence := model.NewEvidenceSet()

	similar, err := selector.similar(ctx, text, limit, threshold)
	if err != nil {
		return nil, err
	}
	for _, chunk := range similar {
		evidence.Add(chunk)
	}

	if evidence.Size() > 0 {
		return evidence, nil
	}

	// Keyword fallback keeps the pipeline working without embeddings
	ranked, err := selector.keywordRank(ctx, text, limit)
	if err != nil {
		return nil, err
	}
	for _, chunk := range ranked {
		evidence.Add(chunk)
	}
	return evidence, nil
}

// mentionsAnyEntity reports whether the chunk's entity counts contain one of
// the detected target entities
func mentionsAnyEntity(chunk *model.Chunk, entityKeywords []string) bool {
	for _, keyword := range entityKeywords {
		if chunk.Entities[keyword] > 0 {
			return true
		}
	}
	return false
}
