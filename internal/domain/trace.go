package domain

import (
	"time"

	"github.com/google/uuid"
)

// Акторы trace-записей.
const (
	// ActorSupervisor — маршрутизирующее решение (completion marker,
	// ошибка маршрутизации, исчерпание бюджета).
	ActorSupervisor = "supervisor"
)

// TraceEntry — запись в журнале выполнения run.
//
// Trace — append-only: записи никогда не переупорядочиваются
// и не изменяются после добавления. Одна запись на выполнение воркера
// (payload содержит решение оракула и итог) плюс завершающий маркер
// от супервизора.
type TraceEntry struct {
	// RunID — ссылка на run.
	RunID uuid.UUID `json:"run_id"`

	// Seq — порядковый номер записи внутри run (с нуля).
	Seq int `json:"seq"`

	// Actor — кто произвёл запись: worker id или ActorSupervisor.
	Actor string `json:"actor"`

	// Payload — содержимое записи: решение, итог воркера, ошибка.
	Payload map[string]any `json:"payload,omitempty"`

	// Timestamp — время добавления записи.
	Timestamp time.Time `json:"timestamp"`
}
