package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/impactrealty/conductor/internal/engine"
)

// CheckpointRepo — durable-хранилище чекпоинтов состояния запуска.
// Реализует engine.CheckpointStore поверх Postgres: одна строка на
// run_id, состояние сериализуется в JSONB целиком.
type CheckpointRepo struct {
	pool *pgxpool.Pool
}

// NewCheckpointRepo создаёт новый CheckpointRepo.
func NewCheckpointRepo(pool *pgxpool.Pool) *CheckpointRepo {
	return &CheckpointRepo{pool: pool}
}

// Save сохраняет состояние запуска (upsert по run_id).
func (r *CheckpointRepo) Save(ctx context.Context, state *engine.RunState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	query := `
		INSERT INTO run_checkpoints (run_id, state, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (run_id) DO UPDATE
		SET state = EXCLUDED.state, updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, state.RunID, stateJSON); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Load возвращает последний чекпоинт запуска.
func (r *CheckpointRepo) Load(ctx context.Context, runID uuid.UUID) (*engine.RunState, error) {
	var stateJSON []byte

	err := r.pool.QueryRow(ctx,
		`SELECT state FROM run_checkpoints WHERE run_id = $1`, runID,
	).Scan(&stateJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", engine.ErrCheckpointNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	var state engine.RunState
	if err := json.Unmarshal(stateJSON, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &state, nil
}
