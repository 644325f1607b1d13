package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/impactrealty/conductor/internal/domain"
)

// TraceRepo — репозиторий append-only журнала запусков.
// Записи никогда не обновляются и не удаляются.
type TraceRepo struct {
	pool *pgxpool.Pool
}

// NewTraceRepo создаёт новый TraceRepo.
func NewTraceRepo(pool *pgxpool.Pool) *TraceRepo {
	return &TraceRepo{pool: pool}
}

// Append добавляет запись трейса.
func (r *TraceRepo) Append(ctx context.Context, entry domain.TraceEntry) error {
	payloadJSON, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	query := `
		INSERT INTO run_trace (run_id, seq, actor, payload, ts)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.pool.Exec(ctx, query,
		entry.RunID,
		entry.Seq,
		entry.Actor,
		payloadJSON,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert trace entry: %w", err)
	}
	return nil
}

// ListByRunID возвращает трейс запуска в порядке seq.
func (r *TraceRepo) ListByRunID(ctx context.Context, runID uuid.UUID) ([]domain.TraceEntry, error) {
	query := `
		SELECT run_id, seq, actor, payload, ts
		FROM run_trace
		WHERE run_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list trace: %w", err)
	}
	defer rows.Close()

	var entries []domain.TraceEntry
	for rows.Next() {
		var entry domain.TraceEntry
		var payloadJSON []byte

		if err := rows.Scan(&entry.RunID, &entry.Seq, &entry.Actor, &payloadJSON, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan trace entry: %w", err)
		}
		if payloadJSON != nil {
			if err := json.Unmarshal(payloadJSON, &entry.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal payload: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
