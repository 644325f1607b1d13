package engine

import (
	"context"
	"strings"
)

// DecisionComplete — сентинел завершения: оракул сигнализирует,
// что дальнейших шагов нет.
const DecisionComplete = "complete"

// Oracle — источник решений о маршрутизации.
//
// Decide получает текущее состояние запуска и возвращает идентификатор
// следующего воркера либо DecisionComplete. Внутренний механизм решения
// (таблица правил, эвристика, reasoning-вызов) для движка непрозрачен:
// ответ трактуется как свободный текст и валидируется движком против
// множества известных воркеров. Ошибка вызова трактуется как неявное
// завершение с фатальной ошибкой.
type Oracle interface {
	Decide(ctx context.Context, state *RunState) (string, error)
}

// normalizeDecision приводит сырой ответ оракула к каноничному виду.
// Reasoning-сервисы любят добавлять регистр, кавычки и точки.
func normalizeDecision(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	d = strings.Trim(d, `"'`)
	d = strings.TrimSuffix(d, ".")
	return d
}
