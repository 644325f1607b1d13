package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/impactrealty/conductor/internal/domain"
	"github.com/impactrealty/conductor/internal/engine"
	"github.com/impactrealty/conductor/internal/mq"
	"github.com/impactrealty/conductor/internal/repo"
)

// Scheduler — планировщик, обрабатывающий due schedules.
type Scheduler struct {
	scheduleRepo *repo.ScheduleRepo
	runRepo      *repo.RunRepo
	publisher    *mq.Publisher
	logger       *slog.Logger
	batchSize    int
}

// Config — конфигурация Scheduler.
type Config struct {
	ScheduleRepo *repo.ScheduleRepo
	RunRepo      *repo.RunRepo
	Publisher    *mq.Publisher
	Logger       *slog.Logger
	BatchSize    int // количество schedules за один тик (default: 100)
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		scheduleRepo: cfg.ScheduleRepo,
		runRepo:      cfg.RunRepo,
		publisher:    cfg.Publisher,
		logger:       logger,
		batchSize:    batchSize,
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Находит due schedules (enabled=true, next_due_at <= now)
// 2. Для каждого schedule создаёт PENDING run
// 3. Обновляет next_due_at
// 4. Публикует run.requested в RabbitMQ
//
// Ошибки одного schedule не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now()

	schedules, err := s.scheduleRepo.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return fmt.Errorf("list due schedules: %w", err)
	}

	if len(schedules) == 0 {
		return nil
	}

	s.logger.Debug("found due schedules", "count", len(schedules))

	var processed, created int
	for i := range schedules {
		sched := &schedules[i]

		runCreated, err := s.processSchedule(ctx, sched, now)
		if err != nil {
			s.logger.Error("failed to process schedule",
				"schedule_id", sched.ID,
				"schedule_name", sched.Name,
				"error", err,
			)
			// Продолжаем обработку остальных
			continue
		}

		processed++
		if runCreated {
			created++
		}
	}

	s.logger.Info("scheduler tick completed",
		"due", len(schedules),
		"processed", processed,
		"runs_created", created,
	)

	return nil
}

// processSchedule обрабатывает один schedule.
// Возвращает true, если run был создан (не был дубликатом).
func (s *Scheduler) processSchedule(ctx context.Context, sched *domain.Schedule, now time.Time) (bool, error) {
	// 1. Проверяем, что тип workflow известен и параметры полны.
	// Невалидный schedule пропускаем, не создавая заведомо падающие runs.
	if err := engine.ValidateParams(sched.WorkflowType, sched.Params); err != nil {
		s.logger.Warn("schedule has invalid workflow configuration, skipping",
			"schedule_id", sched.ID,
			"workflow_type", sched.WorkflowType,
			"error", err,
		)
		return false, nil
	}

	// 2. Формируем idempotency key: "{schedule_id}_{next_due_at_unix}".
	// Для одного schedule и конкретного времени создаётся только один run.
	idempKey := fmt.Sprintf("%s_%d", sched.ID, sched.NextDueAt.Unix())

	existingRun, err := s.runRepo.GetByIdempotencyKey(ctx, idempKey)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return false, fmt.Errorf("check idempotency: %w", err)
	}

	var runCreated bool
	var runID uuid.UUID

	if existingRun != nil {
		s.logger.Debug("run already exists (idempotency)",
			"schedule_id", sched.ID,
			"run_id", existingRun.ID,
			"idempotency_key", idempKey,
		)
		runID = existingRun.ID
	} else {
		// 3. Создаём новый run.
		run := &domain.RunRecord{
			ID:             uuid.New(),
			WorkflowType:   sched.WorkflowType,
			Status:         domain.RunStatusPending,
			Input:          sched.Params,
			IdempotencyKey: idempKey,
			CreatedAt:      now,
		}

		if err := s.runRepo.Create(ctx, run); err != nil {
			return false, fmt.Errorf("create run: %w", err)
		}

		s.logger.Info("created run from schedule",
			"run_id", run.ID,
			"schedule_id", sched.ID,
			"schedule_name", sched.Name,
			"workflow_type", sched.WorkflowType,
		)

		runID = run.ID
		runCreated = true
	}

	// 4. Вычисляем следующее время выполнения.
	nextDue, err := CalculateNextDue(sched, now)
	if err != nil {
		s.logger.Error("failed to calculate next due",
			"schedule_id", sched.ID,
			"error", err,
		)
		// Schedule некорректный — лучше не трогать next_due_at
		return runCreated, nil
	}

	// 5. Обновляем schedule.
	sched.RecordRun(runID, nextDue)
	if err := s.scheduleRepo.Update(ctx, sched); err != nil {
		return runCreated, fmt.Errorf("update schedule: %w", err)
	}

	// 6. Публикуем событие (если publisher настроен и run создан).
	if s.publisher != nil && runCreated {
		if err := s.publisher.PublishRunRequested(ctx, runID, sched.WorkflowType); err != nil {
			// Не фатальная ошибка: run уже в БД, Orchestrator
			// подхватит его через polling
			s.logger.Warn("failed to publish run.requested",
				"run_id", runID,
				"error", err,
			)
		}
	}

	return runCreated, nil
}
