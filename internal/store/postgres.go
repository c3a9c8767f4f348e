package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dev.veridex.engine/internal/models"
)

// PostgresStore writes terminal verdicts and loads custom personas. It
// expects the migrations shipped with the product to have run; the
// engine itself never creates tables.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore creates a store on an open database handle.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{db: db, logger: logger}
}

// SaveVerdict upserts the terminal verdict for a validation. Re-running
// a validation overwrites its previous verdict.
func (s *PostgresStore) SaveVerdict(ctx context.Context, runID, validationID string, v *models.Verdict) error {
	query := `
		INSERT INTO validation_verdicts (
			validation_id, run_id, score, verdict_text, used_fallback_judge, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (validation_id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			score = EXCLUDED.score,
			verdict_text = EXCLUDED.verdict_text,
			used_fallback_judge = EXCLUDED.used_fallback_judge,
			created_at = EXCLUDED.created_at
	`

	_, err := s.db.ExecContext(ctx, query,
		validationID,
		runID,
		v.Score,
		v.Text,
		v.UsedFallbackJudge,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("verdict store: save %s: %w", validationID, err)
	}

	s.logger.Debug("Saved verdict",
		zap.String("validation_id", validationID),
		zap.Int("score", v.Score),
		zap.Bool("used_fallback_judge", v.UsedFallbackJudge))
	return nil
}

// Active returns the user's active custom persona, requiring at least
// one document in ready state. No persona is not an error: the run
// simply proceeds with the built-in roster.
func (s *PostgresStore) Active(ctx context.Context, userID string) (*models.Persona, error) {
	query := `
		SELECT p.id, p.display_name, p.role_description, p.cognitive_profile,
		       COALESCE(string_agg(d.summary, E'\n' ORDER BY d.created_at), '')
		FROM custom_personas p
		JOIN persona_documents d ON d.persona_id = p.id AND d.status = 'ready'
		WHERE p.user_id = $1 AND p.status = 'active'
		GROUP BY p.id, p.display_name, p.role_description, p.cognitive_profile
		LIMIT 1
	`

	var p models.Persona
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.DisplayName, &p.RoleDescription, &p.CognitiveProfile, &p.RAGContext,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("persona source: load for user %s: %w", userID, err)
	}

	p.IsCustom = true
	return &p, nil
}
