package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/impactrealty/conductor/internal/agents"
	"github.com/impactrealty/conductor/internal/domain"
	"github.com/impactrealty/conductor/internal/telemetry"
)

// DefaultMaxSteps — бюджет итераций по умолчанию.
// Главная защита от незавершающегося оракула.
const DefaultMaxSteps = 50

// WorkerRegistry — множество известных воркеров.
// Реализуется agents.Registry.
type WorkerRegistry interface {
	Get(id string) (agents.Agent, error)
	IDs() []string
}

// Config — конфигурация движка.
type Config struct {
	// Oracle — источник решений о маршрутизации. Обязателен.
	Oracle Oracle

	// Workers — реестр воркеров. Обязателен.
	Workers WorkerRegistry

	// Checkpoints — хранилище чекпоинтов (default: in-memory).
	Checkpoints CheckpointStore

	// Records — durable-журнал запусков (default: in-memory).
	Records RecordStore

	// Logger — структурированный логгер (default: slog.Default).
	Logger *slog.Logger

	// MaxSteps — бюджет итераций (default: DefaultMaxSteps).
	MaxSteps int
}

// Engine — движок выполнения workflow.
//
// Каждый запуск — строго последовательный конечный автомат:
// Routing → Executing(worker) → Routing → … → Terminal. Параллельного
// fan-out воркеров внутри одного запуска нет; конкурентные запуски
// независимы и не разделяют состояние.
type Engine struct {
	oracle      Oracle
	workers     WorkerRegistry
	checkpoints CheckpointStore
	records     RecordStore
	logger      *slog.Logger
	maxSteps    int
}

// New создаёт движок. Oracle и Workers обязательны.
func New(cfg Config) (*Engine, error) {
	if cfg.Oracle == nil {
		return nil, fmt.Errorf("engine: oracle is required")
	}
	if cfg.Workers == nil {
		return nil, fmt.Errorf("engine: worker registry is required")
	}

	if cfg.Checkpoints == nil {
		cfg.Checkpoints = NewMemoryCheckpointStore()
	}
	if cfg.Records == nil {
		cfg.Records = NewMemoryRecordStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}

	return &Engine{
		oracle:      cfg.Oracle,
		workers:     cfg.Workers,
		checkpoints: cfg.Checkpoints,
		records:     cfg.Records,
		logger:      cfg.Logger,
		maxSteps:    cfg.MaxSteps,
	}, nil
}

// RunResult — структурированный итог запуска для вызывающей стороны.
// Частичные результаты возвращаются и при статусе FAILED.
type RunResult struct {
	RunID   uuid.UUID                 `json:"run_id"`
	Status  domain.RunStatus          `json:"status"`
	Results map[string]map[string]any `json:"result"`
	Trace   []domain.TraceEntry       `json:"trace"`
	Errors  []string                  `json:"errors"`
}

// Execute выполняет workflow от создания состояния до терминального
// статуса. Ошибка возвращается только при невалидных параметрах;
// ошибки выполнения фиксируются в RunResult.Errors и статусе.
func (e *Engine) Execute(ctx context.Context, workflowType string, params map[string]any) (*RunResult, error) {
	if err := ValidateParams(workflowType, params); err != nil {
		return nil, err
	}

	state := NewRunState(workflowType, params)

	rec := &domain.RunRecord{
		ID:           state.RunID,
		WorkflowType: workflowType,
		Input:        params,
		CreatedAt:    time.Now(),
	}
	rec.MarkRunning()
	if err := e.records.CreateRun(ctx, rec); err != nil {
		e.logger.Error("run record create failed", "run_id", state.RunID, "error", err)
	}

	e.run(ctx, state, rec)
	return resultFromState(state), nil
}

// ExecuteRun выполняет заранее созданную запись запуска (PENDING-путь:
// API или Scheduler создали запись, оркестратор передал её движку).
func (e *Engine) ExecuteRun(ctx context.Context, rec *domain.RunRecord) (*RunResult, error) {
	if err := ValidateParams(rec.WorkflowType, rec.Input); err != nil {
		rec.MarkFailed(nil, []string{err.Error()})
		if uerr := e.records.UpdateRun(ctx, rec); uerr != nil {
			e.logger.Error("run record update failed", "run_id", rec.ID, "error", uerr)
		}
		return nil, err
	}

	state := NewRunState(rec.WorkflowType, rec.Input)
	state.RunID = rec.ID

	rec.MarkRunning()
	if err := e.records.UpdateRun(ctx, rec); err != nil {
		e.logger.Error("run record update failed", "run_id", rec.ID, "error", err)
	}

	e.run(ctx, state, rec)
	return resultFromState(state), nil
}

// Resume продолжает запуск с последнего чекпоинта.
// Для завершённого запуска возвращает его итог без выполнения.
func (e *Engine) Resume(ctx context.Context, runID uuid.UUID) (*RunResult, error) {
	state, err := e.checkpoints.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	if state.Completed {
		return resultFromState(state), nil
	}

	rec := &domain.RunRecord{
		ID:           state.RunID,
		WorkflowType: state.WorkflowType,
		Status:       domain.RunStatusRunning,
		Input:        state.Context,
		StartedAt:    &state.StartedAt,
		CreatedAt:    state.StartedAt,
	}

	e.run(ctx, state, rec)
	return resultFromState(state), nil
}

// run — цикл конечного автомата.
//
// Терминальные причины: сентинел завершения, исчерпание бюджета,
// ошибка оракула, неизвестный воркер, отмена контекста. Ошибка
// отдельного воркера не терминальна: управление возвращается оракулу.
func (e *Engine) run(ctx context.Context, state *RunState, rec *domain.RunRecord) {
	if state.Completed {
		return
	}

	logger := telemetry.WithWorkflowType(telemetry.WithRunID(e.logger, state.RunID), state.WorkflowType)
	logger.Info("run started", "max_steps", e.maxSteps)

	reason := DecisionComplete
	for {
		if err := ctx.Err(); err != nil {
			state.appendError(fmt.Sprintf("run cancelled: %v", err))
			reason = "cancelled"
			break
		}
		if state.Steps >= e.maxSteps {
			state.appendError(fmt.Sprintf("step budget exhausted after %d steps", state.Steps))
			reason = "budget_exceeded"
			logger.Warn("step budget exhausted", "steps", state.Steps)
			break
		}

		state.Steps++
		raw, err := e.oracle.Decide(ctx, state)
		if err != nil {
			state.appendError("oracle: " + err.Error())
			reason = "oracle_error"
			logger.Error("oracle decision failed", "error", err)
			break
		}

		decision := normalizeDecision(raw)
		if decision == DecisionComplete {
			break
		}

		worker, err := e.workers.Get(decision)
		if err != nil {
			// Невалидный токен не доходит до вызова: маппится в
			// завершение с ошибкой маршрутизации.
			state.appendError(fmt.Sprintf("oracle returned unknown worker %q", raw))
			reason = "unknown_worker"
			logger.Warn("unknown routing decision", "decision", raw)
			break
		}

		state.NextWorker = decision
		e.executeWorker(ctx, logger, state, decision, worker)
		e.checkpoint(ctx, logger, state)
	}

	e.finalize(ctx, logger, state, rec, reason)
}

// executeWorker вызывает воркера и вливает результат в состояние.
func (e *Engine) executeWorker(ctx context.Context, logger *slog.Logger, state *RunState, id string, worker agents.Agent) {
	state.CurrentWorker = id
	state.NextWorker = ""

	res := invokeWorker(ctx, worker, state.MergedContext())
	fields := resultFields(res)
	state.Results[id] = fields

	state.appendTrace(id, map[string]any{
		"decision": id,
		"success":  res.Success,
		"result":   fields,
	})
	e.persistLastTrace(ctx, logger, state)

	wlog := telemetry.WithWorker(logger, id)
	if res.Success {
		wlog.Info("worker completed", "step", state.Steps)
	} else {
		state.appendError(fmt.Sprintf("%s: %s", id, res.Error))
		wlog.Warn("worker failed", "step", state.Steps, "error", res.Error)
	}

	state.CurrentWorker = ""
}

// invokeWorker изолирует вызов воркера: паника и инфраструктурная
// ошибка превращаются в неуспешный Result, а не в срыв цикла.
func invokeWorker(ctx context.Context, worker agents.Agent, params map[string]any) (res *agents.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = agents.Fail("worker panic: %v", r)
		}
	}()

	out, err := worker.Execute(ctx, params)
	if err != nil {
		return agents.Fail("%v", err)
	}
	if out == nil {
		return agents.Fail("worker returned no result")
	}
	return out
}

// finalize переводит запуск в терминальное состояние ровно один раз.
func (e *Engine) finalize(ctx context.Context, logger *slog.Logger, state *RunState, rec *domain.RunRecord, reason string) {
	if state.Completed {
		return
	}

	state.appendTrace(domain.ActorSupervisor, map[string]any{
		"decision": DecisionComplete,
		"reason":   reason,
	})
	e.persistLastTrace(ctx, logger, state)

	state.Completed = true
	state.CurrentWorker = ""
	state.NextWorker = ""

	status := state.Status()
	if status == domain.RunStatusCompleted {
		rec.MarkCompleted(state.Results)
	} else {
		rec.MarkFailed(state.Results, state.Errors)
	}

	e.checkpoint(ctx, logger, state)
	if err := e.records.UpdateRun(ctx, rec); err != nil {
		logger.Error("run record update failed", "error", err)
	}

	logger.Info("run finished",
		"status", status,
		"steps", state.Steps,
		"errors", len(state.Errors),
		"reason", reason)
}

// checkpoint сохраняет состояние best-effort.
func (e *Engine) checkpoint(ctx context.Context, logger *slog.Logger, state *RunState) {
	if err := e.checkpoints.Save(ctx, state); err != nil {
		logger.Warn("checkpoint save failed", "error", err)
	}
}

// persistLastTrace дописывает последнюю запись трейса в durable-журнал
// best-effort.
func (e *Engine) persistLastTrace(ctx context.Context, logger *slog.Logger, state *RunState) {
	if len(state.Trace) == 0 {
		return
	}
	entry := state.Trace[len(state.Trace)-1]
	if err := e.records.AppendTrace(ctx, entry); err != nil {
		logger.Warn("trace append failed", "seq", entry.Seq, "error", err)
	}
}

// resultFields собирает запись результата воркера для Results:
// доменные поля плюс success и error.
func resultFields(res *agents.Result) map[string]any {
	out := make(map[string]any, len(res.Fields)+2)
	for k, v := range res.Fields {
		out[k] = v
	}
	out["success"] = res.Success
	if res.Error != "" {
		out["error"] = res.Error
	}
	return out
}

func resultFromState(state *RunState) *RunResult {
	return &RunResult{
		RunID:   state.RunID,
		Status:  state.Status(),
		Results: state.Results,
		Trace:   state.Trace,
		Errors:  state.Errors,
	}
}
