package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunRecord — персистентная запись о выполнении workflow.
//
// RunRecord создаётся когда:
// - Клиент запускает workflow через API
// - Scheduler создаёт run по расписанию
//
// Запись переживает процесс движка: in-memory состояние (engine.RunState)
// живёт только внутри цикла выполнения, а RunRecord фиксирует итог.
type RunRecord struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// WorkflowType — тип workflow, выбирающий маршрутизацию и воркеров.
	// Например: "candidate_pipeline", "compliance_audit".
	WorkflowType string `json:"workflow_type"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// Input — входные параметры, переданные при запуске.
	Input map[string]any `json:"input,omitempty"`

	// Output — итоговые результаты по воркерам (worker id → result fields).
	// Заполняется при финализации. Частичные результаты сохраняются
	// и при статусе FAILED.
	Output map[string]map[string]any `json:"output,omitempty"`

	// ErrorSummary — объединённый список ошибок run.
	ErrorSummary string `json:"error_summary,omitempty"`

	// IdempotencyKey — ключ идемпотентности для scheduled runs:
	// "{schedule_id}_{next_due_at}".
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	// StartedAt — время, когда движок взял run в работу (статус RUNNING).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt — время финализации. Nil, пока статус не терминальный.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// CreatedAt — время создания записи.
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *RunRecord) Duration() time.Duration {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(*r.StartedAt)
}

// IsFinished возвращает true, если run завершён.
func (r *RunRecord) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkRunning переводит run в статус RUNNING.
func (r *RunRecord) MarkRunning() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
}

// MarkCompleted финализирует run без ошибок.
func (r *RunRecord) MarkCompleted(output map[string]map[string]any) {
	now := time.Now()
	r.Status = RunStatusCompleted
	r.Output = output
	r.CompletedAt = &now
}

// MarkFailed финализирует run с ошибками.
// Частичные результаты сохраняются в Output.
func (r *RunRecord) MarkFailed(output map[string]map[string]any, errs []string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.Output = output
	r.ErrorSummary = strings.Join(errs, "; ")
	r.CompletedAt = &now
}
