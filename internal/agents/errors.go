package agents

import "errors"

// Ошибки воркеров.
var (
	// ErrAgentNotFound — воркер не найден в реестре.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrLLMUnavailable — reasoning-сервис недоступен.
	ErrLLMUnavailable = errors.New("llm unavailable")
)
