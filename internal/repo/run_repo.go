package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/impactrealty/conductor/internal/domain"
)

// RunRepo — репозиторий записей запусков workflow.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

const runColumns = `id, workflow_type, status, input, output, error_summary,
       idempotency_key, started_at, completed_at, created_at`

// Create создаёт запись запуска.
func (r *RunRepo) Create(ctx context.Context, rec *domain.RunRecord) error {
	inputJSON, err := json.Marshal(rec.Input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}

	query := `
		INSERT INTO runs (id, workflow_type, status, input, idempotency_key, started_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		rec.ID,
		rec.WorkflowType,
		rec.Status,
		inputJSON,
		nullString(rec.IdempotencyKey),
		rec.StartedAt,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID возвращает запись запуска по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1`
	return scanRun(r.pool.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey возвращает запись по ключу идемпотентности.
func (r *RunRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE idempotency_key = $1`
	return scanRun(r.pool.QueryRow(ctx, query, key))
}

// List возвращает список запусков с фильтрацией.
func (r *RunRepo) List(ctx context.Context, filter RunFilter) ([]domain.RunRecord, error) {
	query := `
		SELECT ` + runColumns + `
		FROM runs
		WHERE ($1::text IS NULL OR workflow_type = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(filter.WorkflowType),
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// Update обновляет запись запуска.
func (r *RunRepo) Update(ctx context.Context, rec *domain.RunRecord) error {
	outputJSON, err := json.Marshal(rec.Output)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	query := `
		UPDATE runs
		SET status = $2, output = $3, error_summary = $4, started_at = $5, completed_at = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.Status,
		outputJSON,
		nullString(rec.ErrorSummary),
		rec.StartedAt,
		rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPending возвращает запуски в статусе PENDING в порядке создания.
func (r *RunRepo) ListPending(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	query := `
		SELECT ` + runColumns + `
		FROM runs
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// ClaimPending атомарно переводит PENDING-запуск в RUNNING.
// Возвращает false, если запуск уже взят (другим путём доставки:
// очередь против поллинга).
func (r *RunRepo) ClaimPending(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE runs
		SET status = 'RUNNING', started_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
	`, id)
	if err != nil {
		return false, fmt.Errorf("claim run: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// FailStale помечает зависшие RUNNING-запуски как FAILED.
//
// Если процесс движка умер посреди запуска, запись остаётся в RUNNING;
// рестарт-реконсиляция закрывает такие записи вместо молчаливого
// возобновления. Возвращает ID закрытых запусков.
func (r *RunRepo) FailStale(ctx context.Context, olderThan time.Duration) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE runs
		SET status = 'FAILED',
		    error_summary = 'stale run: engine did not finish within timeout',
		    completed_at = NOW()
		WHERE status = 'RUNNING' AND started_at < NOW() - $1::interval
		RETURNING id
	`, olderThan.String())
	if err != nil {
		return nil, fmt.Errorf("fail stale runs: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stale run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Helpers ---

// RunFilter — параметры фильтрации запусков.
type RunFilter struct {
	WorkflowType string
	Status       domain.RunStatus
	Limit        int
	Offset       int
}

func scanRun(row pgx.Row) (*domain.RunRecord, error) {
	rec, err := scanRunFrom(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func scanRunFrom(row pgx.Row) (*domain.RunRecord, error) {
	var rec domain.RunRecord
	var inputJSON, outputJSON []byte
	var errorSummary, idempotencyKey *string

	err := row.Scan(
		&rec.ID,
		&rec.WorkflowType,
		&rec.Status,
		&inputJSON,
		&outputJSON,
		&errorSummary,
		&idempotencyKey,
		&rec.StartedAt,
		&rec.CompletedAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if inputJSON != nil {
		if err := json.Unmarshal(inputJSON, &rec.Input); err != nil {
			return nil, fmt.Errorf("unmarshal input: %w", err)
		}
	}
	if outputJSON != nil {
		if err := json.Unmarshal(outputJSON, &rec.Output); err != nil {
			return nil, fmt.Errorf("unmarshal output: %w", err)
		}
	}
	if errorSummary != nil {
		rec.ErrorSummary = *errorSummary
	}
	if idempotencyKey != nil {
		rec.IdempotencyKey = *idempotencyKey
	}

	return &rec, nil
}

func collectRuns(rows pgx.Rows) ([]domain.RunRecord, error) {
	var recs []domain.RunRecord
	for rows.Next() {
		rec, err := scanRunFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullInt возвращает nil для нулевого int.
func nullInt(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}
