package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/impactrealty/conductor/internal/domain"
)

// RunState — полное in-memory состояние одного запуска.
//
// Состоянием владеет исключительно цикл движка: мутации происходят
// только внутри активной итерации, конкурентного доступа нет. Для
// персистентности состояние сериализуется в чекпоинт целиком.
type RunState struct {
	// RunID — идентификатор запуска, неизменяем.
	RunID uuid.UUID `json:"run_id"`

	// WorkflowType — тип workflow, выбирает политику маршрутизации.
	WorkflowType string `json:"workflow_type"`

	// Context — параметры запуска и накопленные cross-step входы.
	Context map[string]any `json:"context"`

	// Results — последний результат каждого воркера.
	// Повторный запуск воркера перезаписывает его запись.
	Results map[string]map[string]any `json:"results"`

	// Trace — append-only журнал решений и выполнений.
	Trace []domain.TraceEntry `json:"trace"`

	// Errors — append-only список ошибок запуска.
	Errors []string `json:"errors"`

	// CurrentWorker и NextWorker — транзитные поля маршрутизации,
	// валидны только внутри цикла.
	CurrentWorker string `json:"current_worker,omitempty"`
	NextWorker    string `json:"next_worker,omitempty"`

	// Steps — число потреблённых итераций (вызовов оракула).
	Steps int `json:"steps"`

	// Completed — монотонный переход false→true ровно один раз.
	// После true состояние не мутируется.
	Completed bool `json:"completed"`

	// StartedAt — момент создания состояния.
	StartedAt time.Time `json:"started_at"`
}

// NewRunState создаёт свежее состояние запуска.
func NewRunState(workflowType string, params map[string]any) *RunState {
	if params == nil {
		params = make(map[string]any)
	}
	return &RunState{
		RunID:        uuid.New(),
		WorkflowType: workflowType,
		Context:      params,
		Results:      make(map[string]map[string]any),
		StartedAt:    time.Now().UTC(),
	}
}

// appendTrace добавляет запись в журнал. После завершения запуска
// записи не добавляются.
func (s *RunState) appendTrace(actor string, payload map[string]any) {
	if s.Completed {
		return
	}
	s.Trace = append(s.Trace, domain.TraceEntry{
		RunID:     s.RunID,
		Seq:       len(s.Trace) + 1,
		Actor:     actor,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

// appendError добавляет ошибку в список.
func (s *RunState) appendError(msg string) {
	if s.Completed {
		return
	}
	s.Errors = append(s.Errors, msg)
}

// Status возвращает терминальный статус состояния:
// COMPLETED при пустом списке ошибок, иначе FAILED.
func (s *RunState) Status() domain.RunStatus {
	if len(s.Errors) == 0 {
		return domain.RunStatusCompleted
	}
	return domain.RunStatusFailed
}

// MergedContext возвращает контекст для вызова воркера: параметры
// запуска плюс снимок предыдущих результатов под ключом "results".
func (s *RunState) MergedContext() map[string]any {
	merged := make(map[string]any, len(s.Context)+1)
	for k, v := range s.Context {
		merged[k] = v
	}

	prior := make(map[string]any, len(s.Results))
	for id, fields := range s.Results {
		prior[id] = fields
	}
	merged["results"] = prior

	return merged
}

// Clone возвращает копию состояния для чекпоинта.
// Верхнеуровневые коллекции копируются; вложенные значения
// разделяются — движок никогда не мутирует их после записи.
func (s *RunState) Clone() *RunState {
	c := *s

	c.Context = make(map[string]any, len(s.Context))
	for k, v := range s.Context {
		c.Context[k] = v
	}

	c.Results = make(map[string]map[string]any, len(s.Results))
	for id, fields := range s.Results {
		c.Results[id] = fields
	}

	c.Trace = append([]domain.TraceEntry(nil), s.Trace...)
	c.Errors = append([]string(nil), s.Errors...)

	return &c
}
