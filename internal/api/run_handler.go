package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/impactrealty/conductor/internal/domain"
	"github.com/impactrealty/conductor/internal/engine"
	"github.com/impactrealty/conductor/internal/repo"
)

// ListRuns возвращает список runs с фильтрацией.
// GET /api/v1/runs?workflow_type=...&status=...&limit=...&offset=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := repo.RunFilter{
		WorkflowType: r.URL.Query().Get("workflow_type"),
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.RunStatus(status)
	}

	filter.Limit = 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		filter.Limit = int(mustParseInt(limitStr, 50))
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		filter.Offset = int(mustParseInt(offsetStr, 0))
	}

	runs, err := h.runRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i, run := range runs {
		result[i] = RunFromDomain(run)
	}

	List(w, result, len(result))
}

// CreateRun создаёт новый PENDING run для workflow.
// POST /api/v1/workflows/{type}/runs
//
// Параметры валидируются сразу: неизвестный тип workflow и неполные
// параметры — ошибка запроса, run не создаётся.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	workflowType := r.PathValue("type")

	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if err := engine.ValidateParams(workflowType, req.Params); err != nil {
		if errors.Is(err, engine.ErrUnknownWorkflow) {
			NotFound(w, "unknown workflow type")
			return
		}
		BadRequest(w, err.Error())
		return
	}

	// Проверяем idempotency key
	if req.IdempotencyKey != "" {
		existingRun, err := h.runRepo.GetByIdempotencyKey(r.Context(), req.IdempotencyKey)
		if err == nil && existingRun != nil {
			// Возвращаем существующий run
			Success(w, RunFromDomain(*existingRun))
			return
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			InternalError(w, h.logger, err)
			return
		}
	}

	run := &domain.RunRecord{
		ID:             uuid.New(),
		WorkflowType:   workflowType,
		Status:         domain.RunStatusPending,
		Input:          req.Params,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      time.Now(),
	}

	if err := h.runRepo.Create(r.Context(), run); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	// Публикуем событие в очередь. Best-effort: run уже в БД,
	// Orchestrator подхватит его через polling.
	if h.publisher != nil {
		if err := h.publisher.PublishRunRequested(r.Context(), run.ID, run.WorkflowType); err != nil {
			h.logger.Warn("failed to publish run.requested", "run_id", run.ID, "error", err)
		}
	}

	Created(w, RunFromDomain(*run))
}

// GetRun возвращает run по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, RunFromDomain(*run))
}

// GetRunTrace возвращает журнал выполнения run.
// GET /api/v1/runs/{id}/trace
func (h *Handler) GetRunTrace(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	// Проверяем, что run существует
	_, err = h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	entries, err := h.traceRepo.ListByRunID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]TraceEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = TraceEntryFromDomain(e)
	}

	List(w, result, len(result))
}

// mustParseInt парсит строку в int с дефолтным значением.
func mustParseInt(s string, defaultVal int64) int64 {
	if n, err := json.Number(s).Int64(); err == nil {
		return n
	}
	return defaultVal
}
