package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultStreamPrefix = "veridex:run:"
	defaultStreamMaxLen = 1000
)

// RedisSink appends run events to a per-run Redis Stream. Streams give
// the sink its ordering and replay guarantees for free: XADD is atomic,
// entries are timestamp-ordered, and consumers tail with XREAD without
// any coordination with the writer.
type RedisSink struct {
	client *redis.Client
	prefix string
	maxLen int64
}

// NewRedisSink creates a stream-backed sink on the given client.
func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{
		client: client,
		prefix: defaultStreamPrefix,
		maxLen: defaultStreamMaxLen,
	}
}

func (s *RedisSink) streamKey(runID string) string {
	return s.prefix + runID + ":events"
}

// Append XADDs one event to the run's stream.
func (s *RedisSink) Append(ctx context.Context, runID string, t EventType, source string, payload any) error {
	ev := NewEvent(runID, t, source, payload)

	var payloadJSON []byte
	if payload != nil {
		var err error
		payloadJSON, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("events: failed to marshal payload: %w", err)
		}
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.streamKey(runID),
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"id":      ev.ID,
			"type":    string(ev.Type),
			"source":  ev.Source,
			"payload": string(payloadJSON),
			"ts":      ev.Timestamp.Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("events: failed to append to stream: %w", err)
	}
	return nil
}

// Events reads the run's full stream in order.
func (s *RedisSink) Events(ctx context.Context, runID string) ([]Event, error) {
	entries, err := s.client.XRange(ctx, s.streamKey(runID), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("events: failed to read stream: %w", err)
	}

	out := make([]Event, 0, len(entries))
	for _, entry := range entries {
		ev := Event{RunID: runID}
		if v, ok := entry.Values["id"].(string); ok {
			ev.ID = v
		}
		if v, ok := entry.Values["type"].(string); ok {
			ev.Type = EventType(v)
		}
		if v, ok := entry.Values["source"].(string); ok {
			ev.Source = v
		}
		if v, ok := entry.Values["payload"].(string); ok && v != "" {
			var payload any
			if err := json.Unmarshal([]byte(v), &payload); err == nil {
				ev.Payload = payload
			}
		}
		if v, ok := entry.Values["ts"].(string); ok {
			if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
				ev.Timestamp = ts
			}
		}
		out = append(out, ev)
	}
	return out, nil
}
