package orchestrator

import (
	"errors"
	"time"
)

// publishTimeout — лимит на публикацию события завершения.
const publishTimeout = 5 * time.Second

// Ошибки оркестратора.
var (
	// ErrRunNotFound — запуск не найден в БД.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunAlreadyActive — запуск уже выполняется этим процессом.
	ErrRunAlreadyActive = errors.New("run already being processed")

	// ErrRunNotPending — запуск не в статусе PENDING (забран другим
	// процессом или уже завершён).
	ErrRunNotPending = errors.New("run is not in PENDING status")
)
