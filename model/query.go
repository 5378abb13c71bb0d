package model

import (
	"fmt"
	"strings"

	"github.com/docquery/docquery/helper"
)

// QueryType classifies the processing strategy for a query
type QueryType string

const (
	QueryTypeCounting QueryType = "counting"
	QueryTypeAnalysis QueryType = "analysis"
	QueryTypeSearch   QueryType = "search"
	QueryTypeGeneral  QueryType = "general"
)

// MaxQueryLength bounds the accepted question size in characters
const MaxQueryLength = 1000

// Classification is the derived intent of a query
type Classification struct {
	PrimaryType    QueryType         `json:"primary_type"`
	Confidence     float64           `json:"confidence"`
	EntityKeywords []string          `json:"entity_keywords,omitempty"`
	IsComplex      bool              `json:"is_complex"`
	Scores         map[QueryType]int `json:"scores,omitempty"`
}

// Query is one immutable question against the loaded document
type Query struct {
	Text           string          `json:"text"`
	Classification *Classification `json:"classification,omitempty"`
}

// NewQuery validates the question text and creates a Query
func NewQuery(text string) (*Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, helper.NewError("validate query", fmt.Errorf("question is required"))
	}
	if len(text) > MaxQueryLength {
		return nil, helper.NewError("validate query", fmt.Errorf("%w: question exceeds %d characters", ErrQueryTooLong, MaxQueryLength))
	}
	return &Query{Text: text}, nil
}
