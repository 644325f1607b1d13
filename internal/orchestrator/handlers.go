package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/impactrealty/conductor/internal/domain"
	"github.com/impactrealty/conductor/internal/mq"
	"github.com/impactrealty/conductor/internal/repo"
)

// handleRunRequested обрабатывает событие о новом запуске из очереди.
func (o *Orchestrator) handleRunRequested(ctx context.Context, msg *mq.Message) error {
	payload, err := mq.ParsePayload[mq.RunRequestedPayload](msg)
	if err != nil {
		o.logger.Error("failed to parse run.requested payload", "error", err)
		return err
	}

	o.logger.Debug("received run.requested event", "run_id", payload.RunID)

	if err := o.dispatch(ctx, payload.RunID); err != nil {
		if isBenignDispatchError(err) {
			// Запуск уже забран этим или другим процессом.
			o.logger.Debug("run not dispatched", "run_id", payload.RunID, "reason", err)
			return nil
		}
		o.logger.Error("failed to dispatch run", "run_id", payload.RunID, "error", err)
		return err
	}

	return nil
}

// dispatch забирает PENDING запуск и запускает его выполнение.
//
// Claim атомарный (PENDING → RUNNING одним UPDATE), поэтому один и тот
// же запуск не может быть выполнен дважды, даже если событие из очереди
// и polling увидели его одновременно — или его увидели два процесса.
func (o *Orchestrator) dispatch(ctx context.Context, runID uuid.UUID) error {
	if o.isRunActive(runID) {
		return ErrRunAlreadyActive
	}

	rec, err := o.runs.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return fmt.Errorf("get run: %w", err)
	}

	if rec.Status != domain.RunStatusPending {
		return ErrRunNotPending
	}

	claimed, err := o.runs.ClaimPending(ctx, runID)
	if err != nil {
		return fmt.Errorf("claim run: %w", err)
	}
	if !claimed {
		return ErrRunNotPending
	}

	if err := o.addActiveRun(runID); err != nil {
		return err
	}

	// Ждём слот семафора: consumer с prefetch == cap(sem) при этом
	// перестаёт забирать новые сообщения.
	select {
	case <-ctx.Done():
		o.removeActiveRun(runID)
		return ctx.Err()
	case o.sem <- struct{}{}:
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() { <-o.sem }()
		defer o.removeActiveRun(runID)

		o.executeRun(ctx, rec)
	}()

	return nil
}

// executeRun прогоняет запуск через Engine с wall-clock лимитом
// и публикует run.completed.
func (o *Orchestrator) executeRun(ctx context.Context, rec *domain.RunRecord) {
	runCtx, cancel := context.WithTimeout(ctx, o.runTimeout)
	defer cancel()

	o.logger.Info("run dispatched",
		"run_id", rec.ID,
		"workflow_type", rec.WorkflowType,
	)

	result, err := o.engine.ExecuteRun(runCtx, rec)
	if err != nil {
		// Ошибка валидации: Engine уже перевёл запись в FAILED.
		o.logger.Warn("run rejected",
			"run_id", rec.ID,
			"workflow_type", rec.WorkflowType,
			"error", err,
		)
		o.publishCompleted(rec)
		return
	}

	o.logger.Info("run finished",
		"run_id", rec.ID,
		"workflow_type", rec.WorkflowType,
		"status", result.Status,
		"errors", len(result.Errors),
	)

	o.publishCompleted(rec)
}

// publishCompleted публикует событие о завершении запуска.
// Best-effort: итог уже durable в БД, подписчики могут догнать через API.
func (o *Orchestrator) publishCompleted(rec *domain.RunRecord) {
	if o.publisher == nil {
		return
	}

	// Свежий контекст: родительский мог быть отменён таймаутом запуска.
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := o.publisher.PublishRunCompleted(ctx, mq.RunCompletedPayload{
		RunID:        rec.ID,
		WorkflowType: rec.WorkflowType,
		Status:       rec.Status,
		ErrorSummary: rec.ErrorSummary,
	})
	if err != nil {
		o.logger.Warn("failed to publish run.completed",
			"run_id", rec.ID,
			"error", err,
		)
	}
}

// isBenignDispatchError сообщает, является ли ошибка dispatch штатной
// (запуск уже забран или не в PENDING).
func isBenignDispatchError(err error) bool {
	return errors.Is(err, ErrRunNotPending) || errors.Is(err, ErrRunAlreadyActive)
}
