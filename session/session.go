// Package session holds the per-caller state of the query surface.
package session

import (
	"sync"

	"github.com/docquery/docquery/model"
)

// Session tracks the loaded document and recent queries for one caller.
// Multiple orchestration runs may touch the session concurrently.
type Session struct {
	mu         sync.RWMutex
	ready      bool
	document   *model.Document
	chunkCount int
	history    *model.QueryHistory
}

// New creates an empty session with no document loaded
func New() *Session {
	return &Session{history: model.NewQueryHistory()}
}

// SetDocument marks the session ready with the given document
func (s *Session) SetDocument(doc *model.Document, chunkCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.document = doc
	s.chunkCount = chunkCount
}

// Ready reports whether a document has been loaded
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Document returns the loaded document and its chunk count, or nil
func (s *Session) Document() (*model.Document, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.document, s.chunkCount
}

// History returns the session's query history
func (s *Session) History() *model.QueryHistory {
	return s.history
}
