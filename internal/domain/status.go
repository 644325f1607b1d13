package domain

// RunStatus — статус выполнения workflow run.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	                  ↘ FAILED
//
// PENDING — запись создана (API или Scheduler), движок ещё не взял run в работу.
// Переход RUNNING → терминальный статус происходит ровно один раз;
// completed_at заполняется только в терминальном статусе.
type RunStatus string

const (
	// RunStatusPending — run создан, ожидает движок.
	RunStatusPending RunStatus = "PENDING"

	// RunStatusRunning — run выполняется движком.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusCompleted — run завершён без ошибок.
	RunStatusCompleted RunStatus = "COMPLETED"

	// RunStatusFailed — run завершён с ошибками (включая timeout и budget).
	RunStatusFailed RunStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed:
		return true
	default:
		return false
	}
}
