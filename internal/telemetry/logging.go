package telemetry

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// LogLevel определяет уровень логирования из переменной окружения.
// Возможные значения: DEBUG, INFO, WARN, ERROR
// По умолчанию: INFO
func LogLevel() slog.Level {
	level := os.Getenv("LOG_LEVEL")
	switch level {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger инициализирует глобальный логгер.
//
// Формат вывода определяется переменной LOG_FORMAT:
//   - "json" (по умолчанию) — JSON формат для production
//   - "text" — человекочитаемый формат для разработки
func SetupLogger() *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     LogLevel(),
		AddSource: LogLevel() == slog.LevelDebug,
	}

	format := os.Getenv("LOG_FORMAT")
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// WithRunID возвращает логгер с атрибутом run_id.
// Все записи жизненного цикла одного запуска несут этот атрибут.
func WithRunID(logger *slog.Logger, runID uuid.UUID) *slog.Logger {
	return logger.With("run_id", runID)
}

// WithWorkflowType возвращает логгер с добавленным workflow_type.
func WithWorkflowType(logger *slog.Logger, workflowType string) *slog.Logger {
	return logger.With("workflow_type", workflowType)
}

// WithWorker возвращает логгер с добавленным worker.
func WithWorker(logger *slog.Logger, worker string) *slog.Logger {
	return logger.With("worker", worker)
}
