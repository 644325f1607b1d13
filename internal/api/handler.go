package api

import (
	"log/slog"

	"github.com/impactrealty/conductor/internal/mq"
	"github.com/impactrealty/conductor/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	runRepo      *repo.RunRepo
	traceRepo    *repo.TraceRepo
	scheduleRepo *repo.ScheduleRepo
	publisher    *mq.Publisher
	logger       *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	RunRepo      *repo.RunRepo
	TraceRepo    *repo.TraceRepo
	ScheduleRepo *repo.ScheduleRepo
	Publisher    *mq.Publisher
	Logger       *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		runRepo:      cfg.RunRepo,
		traceRepo:    cfg.TraceRepo,
		scheduleRepo: cfg.ScheduleRepo,
		publisher:    cfg.Publisher,
		logger:       cfg.Logger,
	}
}
