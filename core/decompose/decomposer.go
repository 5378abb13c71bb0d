// Package decompose breaks complex questions into prioritized sub-queries.
package decompose

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/docquery/docquery/model"
)

// Facet names one aspect a complex question can ask about
type Facet string

const (
	FacetOverallNumbers   Facet = "overall_numbers"
	FacetMarketSpecific   Facet = "market_specific"
	FacetComparison       Facet = "comparison"
	FacetComplaintReasons Facet = "complaint_reasons"
	FacetCapaDetails      Facet = "capa_details"
	FacetTrendsPatterns   Facet = "trends_patterns"
	FacetGeneral          Facet = "general"
)

type facetRule struct {
	facet     Facet
	patterns  []*regexp.Regexp
	subQuery  string
	step      string
	queryType model.QueryType
	priority  int
}

// facetRules is evaluated in fixed order so decomposition is deterministic.
// Each rule yields one focused sub-query when any of its patterns match.
var facetRules = []facetRule{
	{
		facet: FacetOverallNumbers,
		patterns: compileAll(
			`total.*complaints?`,
			`overall.*numbers?`,
			`substantiated.*unsubstantiated`,
			`complaint.*count`,
			`how many.*total`,
		),
		subQuery:  "What are the total substantiated and unsubstantiated complaint numbers?",
		step:      "Overall complaint numbers",
		queryType: model.QueryTypeCounting,
		priority:  1,
	},
	{
		facet: FacetMarketSpecific,
		patterns: compileAll(
			`israel.*market`,
			`local.*market`,
			`market.*specific`,
			`israel.*complaints?`,
			`country.*specific`,
		),
		subQuery:  "How many complaints are from Israel local market specifically?",
		step:      "Market specific complaints",
		queryType: model.QueryTypeCounting,
		priority:  2,
	},
	{
		facet: FacetComparison,
		patterns: compileAll(
			`compare.*previous`,
			`increased.*decreased`,
			`trend.*period`,
			`vs.*previous`,
			`compared to`,
		),
		subQuery:  "Compare current complaint numbers to previous review period - increased, decreased, or remained same?",
		step:      "Period comparison",
		queryType: model.QueryTypeAnalysis,
		priority:  1,
	},
	{
		facet: FacetComplaintReasons,
		patterns: compileAll(
			`main.*reasons?`,
			`complaint.*types?`,
			`core.*issues?`,
			`primary.*causes?`,
			`reasons?.*complaints?`,
		),
		subQuery:  "What are the main complaint reasons and core issues identified?",
		step:      "Complaint reasons",
		queryType: model.QueryTypeAnalysis,
		priority:  2,
	},
	{
		facet: FacetCapaDetails,
		patterns: compileAll(
			`capa.*status`,
			`capa.*details`,
			`corrective.*action`,
			`preventive.*action`,
			`in place.*ongoing`,
		),
		subQuery:  "What is the CAPA status for negative trends - in place, ongoing, or not required?",
		step:      "CAPA status",
		queryType: model.QueryTypeSearch,
		priority:  3,
	},
	{
		facet: FacetTrendsPatterns,
		patterns: compileAll(
			`trends?.*patterns?`,
			`significant.*trends?`,
			`market.*trends?`,
			`negative.*trends?`,
			`patterns?.*identified`,
		),
		subQuery:  "Are there any significant market-specific trends or patterns identified?",
		step:      "Trends and patterns",
		queryType: model.QueryTypeAnalysis,
		priority:  2,
	},
}

var conjunctionPattern = regexp.MustCompile(`\b(and|or|also|additionally|furthermore)\b`)

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// Decomposer turns a complex question into an ordered plan of sub-queries
type Decomposer struct {
	config *model.PipelineConfig
	logger *slog.Logger
}

// NewDecomposer creates a decomposer with the given pipeline config
func NewDecomposer(config *model.PipelineConfig, logger *slog.Logger) *Decomposer {
	if config == nil {
		config = model.DefaultPipelineConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Decomposer{config: config, logger: logger}
}

// Complexity scores a question by matched facets plus structural signals.
// Questions scoring below the configured threshold are not decomposed.
func (d *Decomposer) Complexity(text string) int {
	lower := strings.ToLower(text)

	complexity := 0
	for _, rule := range facetRules {
		if matchesAny(rule.patterns, lower) {
			complexity++
		}
	}
	if len(strings.Fields(text)) > 30 {
		complexity++
	}
	if strings.Count(text, ",") > 2 {
		complexity++
	}
	if conjunctionPattern.MatchString(lower) {
		complexity++
	}
	return complexity
}

// Decompose returns the sub-query plan for a question. Questions below the
// complexity threshold pass through as a single sub-query of their classified
// type. The returned order is deterministic: priority ascending, facet rule
// order on ties.
func (d *Decomposer) Decompose(query *model.Query) []*model.SubQuery {
	complexity := d.Complexity(query.Text)

	if complexity < d.config.ComplexityThreshold {
		d.logger.Debug("query below complexity threshold, using standard approach", "complexity", complexity)
		queryType := model.QueryTypeGeneral
		if query.Classification != nil {
			queryType = query.Classification.PrimaryType
		}
		return []*model.SubQuery{
			model.NewSubQuery(query.Text, "Answer question", query.Text, queryType, 1),
		}
	}

	lower := strings.ToLower(query.Text)
	var subQueries []*model.SubQuery
	for _, rule := range facetRules {
		if matchesAny(rule.patterns, lower) {
			subQueries = append(subQueries, model.NewSubQuery(query.Text, rule.step, rule.subQuery, rule.queryType, rule.priority))
		}
	}

	if len(subQueries) == 0 {
		subQueries = append(subQueries, model.NewSubQuery(query.Text, "Answer question", query.Text, model.QueryTypeAnalysis, 1))
	}

	sort.SliceStable(subQueries, func(i, j int) bool {
		return subQueries[i].Priority < subQueries[j].Priority
	})

	d.logger.Info("query decomposed", "complexity", complexity, "subQueries", len(subQueries))
	return subQueries
}

func matchesAny(patterns []*regexp.Regexp, lower string) bool {
	for _, p := range patterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}
