package model

import "time"

// PipelineConfig holds the tunables of the orchestration pipeline
type PipelineConfig struct {
	// Decomposition
	ComplexityThreshold int `json:"complexity_threshold"`
	SubQueryFanOut      int `json:"sub_query_fan_out"`

	// Evidence selection caps per query type
	MaxChunksCounting int `json:"max_chunks_counting"`
	MaxChunksAnalysis int `json:"max_chunks_analysis"`
	MaxChunksSearch   int `json:"max_chunks_search"`

	// Similarity floors
	CountingFillThreshold float64 `json:"counting_fill_threshold"`
	AnalysisThreshold     float64 `json:"analysis_threshold"`
	SearchThreshold       float64 `json:"search_threshold"`

	// Synthesis
	SummarizeWordThreshold int `json:"summarize_word_threshold"`

	// LLM call policy
	LLMRetries               uint64        `json:"llm_retries"`
	CallTimeoutBase          time.Duration `json:"call_timeout_base"`
	CallTimeoutPerComplexity time.Duration `json:"call_timeout_per_complexity"`
	CallTimeoutMax           time.Duration `json:"call_timeout_max"`
}

// DefaultPipelineConfig returns the defaults used by the reference deployment
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		ComplexityThreshold:      3,
		SubQueryFanOut:           3,
		MaxChunksCounting:        25,
		MaxChunksAnalysis:        15,
		MaxChunksSearch:          10,
		CountingFillThreshold:    0.4,
		AnalysisThreshold:        0.3,
		SearchThreshold:          0.3,
		SummarizeWordThreshold:   500,
		LLMRetries:               2,
		CallTimeoutBase:          30 * time.Second,
		CallTimeoutPerComplexity: 6 * time.Second,
		CallTimeoutMax:           90 * time.Second,
	}
}

// CallTimeout scales the per-call budget with computed query complexity
func (c *PipelineConfig) CallTimeout(complexity int) time.Duration {
	timeout := c.CallTimeoutBase + time.Duration(complexity)*c.CallTimeoutPerComplexity
	if timeout > c.CallTimeoutMax {
		timeout = c.CallTimeoutMax
	}
	return timeout
}
