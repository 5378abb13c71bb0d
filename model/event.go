package model

// StepStatus is the reported status in a step progress event
type StepStatus string

const (
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
)

// Terminal event type identifiers
const (
	EventTypeResult = "result"
	EventTypeError  = "error"
)

// ProgressEvent is one record on a run's progress stream. Step events carry
// Step/Status/Detail; terminal events carry Type plus Data or Error.
// Each event is serialized as a single JSON object on one `data:` line.
type ProgressEvent struct {
	Step   string     `json:"step,omitempty"`
	Status StepStatus `json:"status,omitempty"`
	Detail string     `json:"detail,omitempty"`

	Type  string       `json:"type,omitempty"`
	Data  *QueryResult `json:"data,omitempty"`
	Error string       `json:"error,omitempty"`
}

// StepActivated marks a step entering the active state
func StepActivated(step, detail string) ProgressEvent {
	return ProgressEvent{Step: step, Status: StepStatusActive, Detail: detail}
}

// StepCompleted marks a step leaving the active state
func StepCompleted(step, detail string) ProgressEvent {
	return ProgressEvent{Step: step, Status: StepStatusCompleted, Detail: detail}
}

// ResultEvent is the successful terminal event of a run
func ResultEvent(result *QueryResult) ProgressEvent {
	return ProgressEvent{Type: EventTypeResult, Data: result}
}

// ErrorEvent is the failing terminal event of a run
func ErrorEvent(message string) ProgressEvent {
	return ProgressEvent{Type: EventTypeError, Error: message}
}

// Terminal reports whether the event ends the stream
func (e ProgressEvent) Terminal() bool {
	return e.Type == EventTypeResult || e.Type == EventTypeError
}
