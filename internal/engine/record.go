package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/impactrealty/conductor/internal/domain"
)

// RecordStore — durable-журнал запусков: RunRecord плюс append-only
// трейс. Запись best-effort: движок логирует ошибки персистентности,
// но никогда не прерывает из-за них выполнение.
type RecordStore interface {
	// CreateRun создаёт запись запуска.
	CreateRun(ctx context.Context, rec *domain.RunRecord) error

	// UpdateRun обновляет запись запуска (статус, output, ошибки).
	UpdateRun(ctx context.Context, rec *domain.RunRecord) error

	// AppendTrace добавляет запись трейса.
	AppendTrace(ctx context.Context, entry domain.TraceEntry) error
}

// MemoryRecordStore — in-memory реализация RecordStore.
// Потокобезопасен; подходит для тестов и одиночного процесса.
type MemoryRecordStore struct {
	mu     sync.RWMutex
	runs   map[uuid.UUID]domain.RunRecord
	traces map[uuid.UUID][]domain.TraceEntry
}

// NewMemoryRecordStore создаёт пустое in-memory хранилище.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{
		runs:   make(map[uuid.UUID]domain.RunRecord),
		traces: make(map[uuid.UUID][]domain.TraceEntry),
	}
}

// CreateRun сохраняет копию записи запуска.
func (s *MemoryRecordStore) CreateRun(_ context.Context, rec *domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[rec.ID] = *rec
	return nil
}

// UpdateRun перезаписывает запись запуска.
func (s *MemoryRecordStore) UpdateRun(_ context.Context, rec *domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[rec.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, rec.ID)
	}
	s.runs[rec.ID] = *rec
	return nil
}

// AppendTrace добавляет запись трейса.
func (s *MemoryRecordStore) AppendTrace(_ context.Context, entry domain.TraceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traces[entry.RunID] = append(s.traces[entry.RunID], entry)
	return nil
}

// GetRun возвращает запись запуска.
func (s *MemoryRecordStore) GetRun(runID uuid.UUID) (domain.RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	return rec, ok
}

// ListTrace возвращает трейс запуска в порядке добавления.
func (s *MemoryRecordStore) ListTrace(runID uuid.UUID) []domain.TraceEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TraceEntry(nil), s.traces[runID]...)
}
