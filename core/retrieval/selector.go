// Package retrieval selects evidence chunks for a query based on its type.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/docquery/docquery/core/pipeline"
	"github.com/docquery/docquery/helper"
	"github.com/docquery/docquery/model"
	"github.com/docquery/docquery/store"
)

// Selector picks the evidence set for a sub-query. The strategy is chosen by
// query type; all strategies guarantee a non-empty set whenever the store
// holds at least one chunk.
type Selector struct {
	source   store.ChunkSource
	embedder pipeline.EmbedFunc
	config   *model.PipelineConfig
	logger   *slog.Logger
}

// NewSelector creates a selector over the given chunk source.
// A nil embedder puts the selector in keyword-only mode.
func NewSelector(source store.ChunkSource, embedder pipeline.EmbedFunc, config *model.PipelineConfig, logger *slog.Logger) *Selector {
	if config == nil {
		config = model.DefaultPipelineConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		source:   source,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}
}

// Select returns the evidence set for the given sub-query text
func (s *Selector) Select(ctx context.Context, text string, classification *model.Classification) (*model.EvidenceSet, error) {
	strategy := StrategyFor(classification.PrimaryType)

	evidence, err := strategy.Retrieve(ctx, s, text, classification)
	if err != nil {
		return nil, helper.NewError("evidence selection", err)
	}

	if evidence.Size() == 0 {
		count, err := s.source.ChunkCount(ctx)
		if err != nil {
			return nil, helper.NewError("evidence selection", err)
		}
		if count > 0 {
			return nil, helper.NewError("evidence selection", fmt.Errorf("%w for query type %v", model.ErrEvidenceEmpty, classification.PrimaryType))
		}
	}

	s.logger.Debug("evidence selected",
		"queryType", classification.PrimaryType,
		"chunks", evidence.Size(),
		"types", evidence.TypeCounts())
	return evidence, nil
}

// similar returns chunks ranked by vector similarity, or nil in keyword-only mode
func (s *Selector) similar(ctx context.Context, text string, limit int, threshold float64) ([]*model.Chunk, error) {
	if s.embedder == nil {
		return nil, nil
	}
	embedding, err := s.embedder(text)
	if err != nil {
		s.logger.Warn("query embedding failed, falling back to keyword ranking", "error", err)
		return nil, nil
	}
	return s.source.SimilarChunks(ctx, embedding, limit, threshold)
}

// keywordRank ranks all chunks by how many query tokens they contain.
// The order is deterministic: overlap count descending, chunk order on ties.
// If nothing overlaps, the first chunks in document order are returned so the
// result is never empty for a non-empty store.
func (s *Selector) keywordRank(ctx context.Context, text string, limit int) ([]*model.Chunk, error) {
	chunks, err := s.source.AllChunks(ctx)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	tokens := queryTokens(text)

	type scored struct {
		chunk   *model.Chunk
		overlap int
	}
	ranked := make([]scored, 0, len(chunks))
	anyOverlap := false
	for _, chunk := range chunks {
		lower := strings.ToLower(chunk.Content)
		overlap := 0
		for _, token := range tokens {
			if strings.Contains(lower, token) {
				overlap++
			}
		}
		if overlap > 0 {
			anyOverlap = true
		}
		ranked = append(ranked, scored{chunk: chunk, overlap: overlap})
	}

	if anyOverlap {
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].overlap > ranked[j].overlap
		})
	}

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]*model.Chunk, len(ranked))
	for i, r := range ranked {
		out[i] = r.chunk
	}
	return out, nil
}

var tokenStopwords = map[string]bool{
	"the": true, "and": true, "are": true, "was": true, "were": true,
	"how": true, "many": true, "what": true, "which": true, "with": true,
	"for": true, "from": true, "that": true, "this": true, "there": true,
	"about": true, "all": true, "any": true, "have": true, "has": true,
}

func queryTokens(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		field = strings.Trim(field, ".,?!:;\"'()")
		if len(field) < 3 || tokenStopwords[field] {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}
