package model

import "errors"

// Sentinel errors of the query pipeline. Wrapped with context via
// helper.NewError at the point of failure; callers match with errors.Is.
var (
	// ErrNoDocument means a query arrived before any document was loaded
	ErrNoDocument = errors.New("no document loaded")
	// ErrQueryTooLong means the query exceeds MaxQueryLength
	ErrQueryTooLong = errors.New("query too long")
	// ErrEvidenceEmpty means selection produced no chunks although the document has some
	ErrEvidenceEmpty = errors.New("evidence set is empty")
	// ErrLLMCallFailed means a model call failed after exhausting retries
	ErrLLMCallFailed = errors.New("llm call failed")
	// ErrAllSubQueriesFailed means no sub-query produced an answer
	ErrAllSubQueriesFailed = errors.New("all sub-queries failed")
	// ErrSynthesisInputEmpty means synthesis was invoked with nothing to merge
	ErrSynthesisInputEmpty = errors.New("synthesis input is empty")
	// ErrEvaluationUnavailable means no quality metric could be computed
	ErrEvaluationUnavailable = errors.New("quality evaluation unavailable")
)
