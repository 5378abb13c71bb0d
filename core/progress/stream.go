// Package progress carries the ordered event sequence of one orchestration run.
package progress

import (
	"sync"

	"github.com/docquery/docquery/model"
)

// Stream is the single-producer ordered event channel of one run.
// Exactly one terminal event closes the stream; publishes after the terminal
// event are dropped. Publish is safe for concurrent use by the run's workers.
type Stream struct {
	mu       sync.Mutex
	events   chan model.ProgressEvent
	closed   bool
	terminal sync.Once
}

// streamBuffer is sized so a full run never blocks on a consumer that only
// reads after the terminal event
const streamBuffer = 64

// NewStream creates an open progress stream
func NewStream() *Stream {
	return &Stream{events: make(chan model.ProgressEvent, streamBuffer)}
}

// Events returns the receive side of the stream.
// The channel closes after the terminal event.
func (s *Stream) Events() <-chan model.ProgressEvent {
	return s.events
}

// Publish emits a non-terminal step event. Events published after the
// terminal event are silently dropped.
func (s *Stream) Publish(event model.ProgressEvent) {
	if event.Terminal() {
		s.Close(event)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.events <- event
}

// Close emits the terminal event and closes the stream. Only the first call
// has any effect.
func (s *Stream) Close(terminal model.ProgressEvent) {
	s.terminal.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		s.events <- terminal
		close(s.events)
	})
}

// Drain collects all remaining events until the stream closes.
// Intended for non-streaming callers and tests.
func (s *Stream) Drain() []model.ProgressEvent {
	var events []model.ProgressEvent
	for event := range s.events {
		events = append(events, event)
	}
	return events
}
