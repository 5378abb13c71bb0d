// Package classify maps raw query text to a query type and confidence.
package classify

import (
	"regexp"
	"strings"

	"github.com/docquery/docquery/model"
)

// Pattern sets tested in fixed priority order. Counting is checked first
// because it drives exhaustive block enumeration downstream and must not be
// shadowed by analysis or search keywords in the same question.
var (
	countingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bhow many\b`),
		regexp.MustCompile(`\bcount\b`),
		regexp.MustCompile(`\bnumber of\b`),
		regexp.MustCompile(`\btotal\b`),
		regexp.MustCompile(`\blist all\b`),
		regexp.MustCompile(`\bfind all\b`),
	}

	analysisPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\banalyz[es]?\b`),
		regexp.MustCompile(`\banalyse\b`),
		regexp.MustCompile(`\bcompare\b`),
		regexp.MustCompile(`\btrend\b`),
		regexp.MustCompile(`\bsummar[iy]ze?\b`),
		regexp.MustCompile(`\bevaluat[es]?\b`),
		regexp.MustCompile(`\bassess\b`),
		regexp.MustCompile(`\breview\b`),
		regexp.MustCompile(`\breport\b`),
	}

	searchPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bfind\b`),
		regexp.MustCompile(`\bsearch\b`),
		regexp.MustCompile(`\blook.?up\b`),
		regexp.MustCompile(`\bshow\b.*\bwhere\b`),
		regexp.MustCompile(`\bwhat\b.*\bis\b`),
		regexp.MustCompile(`\btell me about\b`),
	}

	knownEntityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bisrael\b`),
		regexp.MustCompile(`\bsubstantiated\b`),
		regexp.MustCompile(`\bunsubstantiated\b`),
		regexp.MustCompile(`\bcapa\b`),
		regexp.MustCompile(`\bqe-`),
	}

	capitalizedToken = regexp.MustCompile(`\b[A-Z][a-z]{2,}\b`)
)

var entityStopwords = map[string]bool{
	"the": true, "what": true, "how": true, "which": true, "where": true,
	"analyze": true, "compare": true, "summarize": true, "list": true,
	"find": true, "show": true, "tell": true, "count": true,
}

// Classify determines the query type, confidence and detected entities.
// The pattern sets are tested in priority order; the first set with a match
// wins. Confidence is the primary set's match share across all sets.
func Classify(text string) *model.Classification {
	lower := strings.ToLower(text)

	scores := map[model.QueryType]int{
		model.QueryTypeCounting: countMatches(countingPatterns, lower),
		model.QueryTypeAnalysis: countMatches(analysisPatterns, lower),
		model.QueryTypeSearch:   countMatches(searchPatterns, lower),
	}

	primary := model.QueryTypeGeneral
	for _, queryType := range []model.QueryType{model.QueryTypeCounting, model.QueryTypeAnalysis, model.QueryTypeSearch} {
		if scores[queryType] > 0 {
			primary = queryType
			break
		}
	}

	totalMatches := scores[model.QueryTypeCounting] + scores[model.QueryTypeAnalysis] + scores[model.QueryTypeSearch]
	confidence := 0.0
	if totalMatches > 0 {
		confidence = float64(scores[primary]) / float64(totalMatches)
	}

	return &model.Classification{
		PrimaryType:    primary,
		Confidence:     confidence,
		EntityKeywords: detectEntities(text, lower),
		IsComplex:      len(text) > 200 || strings.Count(text, ".") > 2 || strings.Count(text, "?") > 1,
		Scores:         scores,
	}
}

func countMatches(patterns []*regexp.Regexp, lower string) int {
	matches := 0
	for _, p := range patterns {
		if p.MatchString(lower) {
			matches++
		}
	}
	return matches
}

// detectEntities returns lowercased target entities in order of appearance:
// known domain entities first, then capitalized terms from the question.
func detectEntities(text, lower string) []string {
	var entities []string
	seen := map[string]bool{}

	add := func(entity string) {
		entity = strings.ToLower(strings.TrimSpace(entity))
		if entity == "" || seen[entity] || entityStopwords[entity] {
			return
		}
		seen[entity] = true
		entities = append(entities, entity)
	}

	for _, p := range knownEntityPatterns {
		if match := p.FindString(lower); match != "" {
			add(strings.TrimSuffix(match, "-"))
		}
	}

	words := strings.Fields(text)
	for i, word := range words {
		if i == 0 {
			continue
		}
		word = strings.Trim(word, ".,?!:;\"'()")
		if match := capitalizedToken.FindString(word); match != "" && match == word {
			add(match)
		}
	}

	return entities
}
