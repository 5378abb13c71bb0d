package model

import (
	"sync"
	"time"
)

// HistoryLimit bounds the per-session query history
const HistoryLimit = 5

// QueryStatus is the display status of a query in the history
type QueryStatus string

const (
	QueryStatusRunning   QueryStatus = "running"
	QueryStatusCompleted QueryStatus = "completed"
	QueryStatusFailed    QueryStatus = "failed"
)

// HistoryEntry is one displayed query with its last known status
type HistoryEntry struct {
	Question  string      `json:"question"`
	Status    QueryStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// QueryHistory keeps the most recent queries of one session, newest first.
// Status updates are last-write-wins keyed by exact question text and are
// safe under concurrent in-flight runs.
type QueryHistory struct {
	mu      sync.Mutex
	entries []HistoryEntry
}

// NewQueryHistory creates an empty history
func NewQueryHistory() *QueryHistory {
	return &QueryHistory{}
}

// Record inserts a new entry or updates the status of an existing one.
// New questions are prepended; updates keep the insertion order.
func (h *QueryHistory) Record(question string, status QueryStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for i := range h.entries {
		if h.entries[i].Question == question {
			h.entries[i].Status = status
			h.entries[i].Timestamp = now
			return
		}
	}

	h.entries = append([]HistoryEntry{{Question: question, Status: status, Timestamp: now}}, h.entries...)
	if len(h.entries) > HistoryLimit {
		h.entries = h.entries[:HistoryLimit]
	}
}

// Entries returns a copy of the history, newest insertion first
func (h *QueryHistory) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
