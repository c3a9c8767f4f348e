package events

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySink_PreservesOrder(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "run-1", EventLang, "engine", "en"))
	require.NoError(t, s.Append(ctx, "run-1", EventSystem, "engine", "round 1 started"))
	require.NoError(t, s.Append(ctx, "run-1", EventComplete, "engine", nil))
	require.NoError(t, s.Append(ctx, "run-2", EventSystem, "engine", "other run"))

	evs, err := s.Events(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, evs, 3)
	assert.Equal(t, EventLang, evs[0].Type)
	assert.Equal(t, EventSystem, evs[1].Type)
	assert.Equal(t, EventComplete, evs[2].Type)
	assert.Equal(t, 1, s.Len("run-2"))
}

func TestMemorySink_ConcurrentAppendsSafe(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.Append(ctx, "run-1", EventModelMsg, "persona", fmt.Sprintf("msg-%d", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len("run-1"))
}

func setupRedisSink(t *testing.T) *RedisSink {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return NewRedisSink(client)
}

func TestRedisSink_AppendAndReadBack(t *testing.T) {
	s := setupRedisSink(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "run-1", EventLang, "engine", "pt"))
	require.NoError(t, s.Append(ctx, "run-1", EventConsensus, "engine",
		map[string]any{"core_sync": 62.0, "global": 62.0, "phase": "round1"}))

	evs, err := s.Events(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, evs, 2)

	assert.Equal(t, EventLang, evs[0].Type)
	assert.Equal(t, "pt", evs[0].Payload)
	assert.NotEmpty(t, evs[0].ID)
	assert.False(t, evs[0].Timestamp.IsZero())

	assert.Equal(t, EventConsensus, evs[1].Type)
	payload, ok := evs[1].Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 62.0, payload["core_sync"])
}

func TestRedisSink_RunsIsolated(t *testing.T) {
	s := setupRedisSink(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "run-a", EventSystem, "engine", "a"))
	require.NoError(t, s.Append(ctx, "run-b", EventSystem, "engine", "b"))

	evs, err := s.Events(ctx, "run-a")
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "a", evs[0].Payload)
}

func TestRedisSink_EmptyRun(t *testing.T) {
	s := setupRedisSink(t)
	evs, err := s.Events(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, evs)
}
