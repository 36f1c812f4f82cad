package sinks

import (
	"context"
	"sync"

	"beta-than-ever/planner/logging"
)

// Memory keeps every event it receives; tests read them back.
type Memory struct {
	mu     sync.RWMutex
	events []logging.Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of the recorded events.
func (s *Memory) Events() []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]logging.Event, len(s.events))
	copy(copied, s.events)
	return copied
}

// OfType returns the recorded events with the given type.
func (s *Memory) OfType(eventType logging.EventType) []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []logging.Event
	for _, event := range s.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func (s *Memory) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = s.events[:0]
}

func (s *Memory) Close(context.Context) error {
	return nil
}

// Recorder is a synchronous Publisher backed by a Memory sink. It skips the
// router so tests can assert on events immediately after the call returns.
type Recorder struct {
	*Memory
}

func NewRecorder() *Recorder {
	return &Recorder{Memory: NewMemory()}
}

func (r *Recorder) Publish(_ context.Context, event logging.Event) {
	r.Write(event)
}
