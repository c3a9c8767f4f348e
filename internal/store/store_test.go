package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.veridex.engine/internal/models"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// ============================================================================
// Redis run store
// ============================================================================

func TestRedisRunStore_UpdateAndGet(t *testing.T) {
	s := NewRedisRunStore(newTestRedis(t), nil)
	ctx := context.Background()

	run := &models.DebateRun{
		RunID:        "run-1",
		ValidationID: "val-1",
		Region:       models.RegionEU,
		Sensitivity:  models.SensitivityRegulated,
		Language:     "de",
		Status:       models.RunStatusRunning,
	}
	require.NoError(t, s.UpdateRun(ctx, run))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)

	run.Status = models.RunStatusComplete
	require.NoError(t, s.UpdateRun(ctx, run))

	got, err = s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusComplete, got.Status)
}

func TestRedisRunStore_GetMissing(t *testing.T) {
	s := NewRedisRunStore(newTestRedis(t), nil)

	_, err := s.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

// ============================================================================
// Postgres verdict store and persona source
// ============================================================================

func TestPostgresStore_SaveVerdict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO validation_verdicts").
		WithArgs("val-1", "run-1", 72, "verdict text", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewPostgresStore(db, nil)
	err = s.SaveVerdict(context.Background(), "run-1", "val-1", &models.Verdict{
		Text:  "verdict text",
		Score: 72,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ActivePersona(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "display_name", "role_description", "cognitive_profile", "coalesce"}).
		AddRow("p-1", "Dr. Chen", "Battery chemist", "You reason from electrochemistry.", "doc one summary\ndoc two summary")
	mock.ExpectQuery("SELECT p.id, p.display_name").
		WithArgs("user-1").
		WillReturnRows(rows)

	s := NewPostgresStore(db, nil)
	p, err := s.Active(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.IsCustom)
	assert.Equal(t, "Dr. Chen", p.DisplayName)
	assert.Contains(t, p.RAGContext, "doc two summary")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ActivePersona_NoneIsNotAnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT p.id, p.display_name").
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name", "role_description", "cognitive_profile", "coalesce"}))

	s := NewPostgresStore(db, nil)
	p, err := s.Active(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Nil(t, p)
}
