package model

import "github.com/google/uuid"

// StepState is the lifecycle state of a sub-query
type StepState string

const (
	StepStatePending   StepState = "pending"
	StepStateActive    StepState = "active"
	StepStateCompleted StepState = "completed"
	StepStateFailed    StepState = "failed"
)

// SubQuery is one focused question derived from a parent query.
// ParentText is a weak reference used for tracing only.
type SubQuery struct {
	ID         uuid.UUID `json:"id"`
	ParentText string    `json:"parent_text,omitempty"`
	Step       string    `json:"step"`
	Text       string    `json:"text"`
	Type       QueryType `json:"type"`
	Priority   int       `json:"priority"`
	State      StepState `json:"state"`
}

// NewSubQuery creates a pending sub-query with a fresh identity
func NewSubQuery(parentText, step, text string, queryType QueryType, priority int) *SubQuery {
	return &SubQuery{
		ID:         uuid.New(),
		ParentText: parentText,
		Step:       step,
		Text:       text,
		Type:       queryType,
		Priority:   priority,
		State:      StepStatePending,
	}
}
