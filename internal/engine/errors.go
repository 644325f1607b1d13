package engine

import "errors"

// Ошибки движка.
var (
	// ErrUnknownWorkflow — тип workflow отсутствует в каталоге.
	ErrUnknownWorkflow = errors.New("unknown workflow type")

	// ErrInvalidParams — параметры запуска не прошли валидацию схемы.
	ErrInvalidParams = errors.New("invalid run params")

	// ErrCheckpointNotFound — чекпоинт для run_id не найден.
	ErrCheckpointNotFound = errors.New("checkpoint not found")

	// ErrRunNotFound — запись запуска не найдена.
	ErrRunNotFound = errors.New("run not found")
)
