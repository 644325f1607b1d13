package repo

import (
	"context"

	"github.com/impactrealty/conductor/internal/domain"
)

// RecordStore — адаптер репозиториев под engine.RecordStore:
// записи запусков и трейс в одном durable-журнале.
type RecordStore struct {
	runs   *RunRepo
	traces *TraceRepo
}

// NewRecordStore создаёт адаптер поверх репозиториев.
func NewRecordStore(runs *RunRepo, traces *TraceRepo) *RecordStore {
	return &RecordStore{runs: runs, traces: traces}
}

// CreateRun создаёт запись запуска.
func (s *RecordStore) CreateRun(ctx context.Context, rec *domain.RunRecord) error {
	return s.runs.Create(ctx, rec)
}

// UpdateRun обновляет запись запуска.
func (s *RecordStore) UpdateRun(ctx context.Context, rec *domain.RunRecord) error {
	return s.runs.Update(ctx, rec)
}

// AppendTrace добавляет запись трейса.
func (s *RecordStore) AppendTrace(ctx context.Context, entry domain.TraceEntry) error {
	return s.traces.Append(ctx, entry)
}
