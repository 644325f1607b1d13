package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// CheckpointStore — хранилище последнего состояния запуска.
//
// Движок сохраняет состояние после каждой итерации; Load позволяет
// возобновить прерванный запуск. Каждый запуск пишет только свой
// run_id, поэтому операции store должны быть атомарны по ключу.
type CheckpointStore interface {
	// Save сохраняет состояние, перезаписывая предыдущий чекпоинт.
	Save(ctx context.Context, state *RunState) error

	// Load возвращает последний чекпоинт запуска.
	// Возвращает ErrCheckpointNotFound, если чекпоинта нет.
	Load(ctx context.Context, runID uuid.UUID) (*RunState, error)
}

// MemoryCheckpointStore — in-memory реализация CheckpointStore.
// Потокобезопасен; подходит для тестов и одиночного процесса.
type MemoryCheckpointStore struct {
	mu     sync.RWMutex
	states map[uuid.UUID]*RunState
}

// NewMemoryCheckpointStore создаёт пустое in-memory хранилище.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{states: make(map[uuid.UUID]*RunState)}
}

// Save сохраняет копию состояния.
func (s *MemoryCheckpointStore) Save(_ context.Context, state *RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.RunID] = state.Clone()
	return nil
}

// Load возвращает копию последнего чекпоинта.
func (s *MemoryCheckpointStore) Load(_ context.Context, runID uuid.UUID) (*RunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointNotFound, runID)
	}
	return state.Clone(), nil
}
