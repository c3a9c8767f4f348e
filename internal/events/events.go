// Package events provides the append-only, timestamp-ordered event sink
// the orchestrator writes run progress and telemetry to. Downstream
// consumers (the streaming endpoint, billing reconciliation) tail the
// sink; the engine only appends.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of run event.
type EventType string

const (
	// EventLang reports the detected input language.
	EventLang EventType = "lang"
	// EventSystem is a free-text status message.
	EventSystem EventType = "system"
	// EventModelMsg carries one persona's RoundResult.
	EventModelMsg EventType = "model_msg"
	// EventJudgeNote carries judge-stage commentary.
	EventJudgeNote EventType = "judge_note"
	// EventConsensus carries a ConsensusSnapshot.
	EventConsensus EventType = "consensus"
	// EventComplete marks the terminal completion of a run.
	EventComplete EventType = "complete"
	// EventError records a recovered failure.
	EventError EventType = "error"
)

// Event is one appended sink entry. The ID makes concurrent appends
// deduplicable by readers, so writers need no coordination.
type Event struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event with a fresh ID and timestamp.
func NewEvent(runID string, t EventType, source string, payload any) Event {
	return Event{
		ID:        uuid.New().String(),
		RunID:     runID,
		Type:      t,
		Source:    source,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Sink is the append-only event log.
type Sink interface {
	Append(ctx context.Context, runID string, t EventType, source string, payload any) error
}

// Reader reads back a run's events in emission order.
type Reader interface {
	Events(ctx context.Context, runID string) ([]Event, error)
}
