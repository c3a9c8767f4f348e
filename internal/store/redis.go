package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dev.veridex.engine/internal/models"
)

// DefaultRunTTL bounds how long a finished run's status stays readable.
const DefaultRunTTL = 24 * time.Hour

// RedisRunStore keeps the current state of each run in a Redis hash.
type RedisRunStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRunStore creates a run store with the default TTL.
func NewRedisRunStore(client *redis.Client, logger *zap.Logger) *RedisRunStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRunStore{client: client, ttl: DefaultRunTTL, logger: logger}
}

func runKey(runID string) string {
	return "veridex:run:" + runID
}

// UpdateRun writes the run's current state, overwriting previous fields.
func (s *RedisRunStore) UpdateRun(ctx context.Context, run *models.DebateRun) error {
	key := runKey(run.RunID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"run_id":        run.RunID,
		"validation_id": run.ValidationID,
		"region":        string(run.Region),
		"sensitivity":   string(run.Sensitivity),
		"language":      run.Language,
		"status":        string(run.Status),
	})
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("run store: update %s: %w", run.RunID, err)
	}

	s.logger.Debug("Updated run state",
		zap.String("run_id", run.RunID),
		zap.String("status", string(run.Status)))
	return nil
}

// GetRun loads the run's current state.
func (s *RedisRunStore) GetRun(ctx context.Context, runID string) (*models.DebateRun, error) {
	fields, err := s.client.HGetAll(ctx, runKey(runID)).Result()
	if err != nil {
		return nil, fmt.Errorf("run store: get %s: %w", runID, err)
	}
	if len(fields) == 0 {
		return nil, ErrRunNotFound
	}

	return &models.DebateRun{
		RunID:        fields["run_id"],
		ValidationID: fields["validation_id"],
		Region:       models.Region(fields["region"]),
		Sensitivity:  models.Sensitivity(fields["sensitivity"]),
		Language:     fields["language"],
		Status:       models.RunStatus(fields["status"]),
	}, nil
}
