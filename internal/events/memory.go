package events

import (
	"context"
	"sync"
)

// MemorySink keeps per-run event logs in memory, preserving emission
// order. Used in tests and single-process deployments.
type MemorySink struct {
	mu   sync.RWMutex
	runs map[string][]Event
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{runs: make(map[string][]Event)}
}

// Append records one event at the end of the run's log.
func (s *MemorySink) Append(ctx context.Context, runID string, t EventType, source string, payload any) error {
	ev := NewEvent(runID, t, source, payload)
	s.mu.Lock()
	s.runs[runID] = append(s.runs[runID], ev)
	s.mu.Unlock()
	return nil
}

// Events returns a copy of the run's log in emission order.
func (s *MemorySink) Events(ctx context.Context, runID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.runs[runID]))
	copy(out, s.runs[runID])
	return out, nil
}

// Len returns the number of events recorded for a run.
func (s *MemorySink) Len(runID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs[runID])
}
