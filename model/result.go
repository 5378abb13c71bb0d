package model

// Answer is the text produced by one LLM execution or by synthesis
type Answer struct {
	Text           string `json:"text"`
	FullReasoning  string `json:"full_reasoning,omitempty"`
	WasSummarized  bool   `json:"was_summarized"`
	ChunksAnalyzed int    `json:"chunks_analyzed"`
}

// SubQueryResult pairs a completed sub-query with its answer.
// Evidence is carried forward for the quality evaluation pass.
type SubQueryResult struct {
	SubQuery *SubQuery    `json:"sub_query"`
	Answer   *Answer      `json:"answer"`
	Evidence *EvidenceSet `json:"-"`
}

// QueryResult is the terminal payload of one orchestration run
type QueryResult struct {
	Question       string              `json:"question"`
	Answer         string              `json:"answer"`
	FullReasoning  string              `json:"full_reasoning,omitempty"`
	WasSummarized  bool                `json:"was_summarized"`
	Classification *Classification     `json:"query_classification,omitempty"`
	ChunksAnalyzed int                 `json:"chunks_analyzed"`
	ChunkAnalysis  map[ContentType]int `json:"chunk_analysis,omitempty"`
	Approach       string              `json:"approach"`
	SubQueryCount  int                 `json:"sub_queries_count,omitempty"`
	Complexity     int                 `json:"complexity,omitempty"`
	FailedSteps    map[string]string   `json:"failed_steps,omitempty"`
	// QualityMetrics is nil when the evaluation pass was unavailable
	QualityMetrics *QualityMetrics `json:"quality_metrics,omitempty"`
}

// Run approach identifiers
const (
	ApproachStandard      = "standard"
	ApproachDecomposition = "decomposition"
)
