package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/impactrealty/conductor/internal/domain"
)

// Workflow DTOs

// WorkflowResponse — описание типа workflow из каталога.
type WorkflowResponse struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	RequiredKeys []string `json:"required_keys,omitempty"`
	Plan         []string `json:"plan"`
}

// WorkflowFromDomain конвертирует domain.WorkflowType в WorkflowResponse.
func WorkflowFromDomain(wt domain.WorkflowType) WorkflowResponse {
	return WorkflowResponse{
		Name:         wt.Name,
		Description:  wt.Description,
		RequiredKeys: wt.RequiredKeys,
		Plan:         wt.Plan,
	}
}

// Run DTOs

// CreateRunRequest — запрос на создание run.
type CreateRunRequest struct {
	Params         map[string]any `json:"params,omitempty"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
}

// RunResponse — ответ с run.
type RunResponse struct {
	ID             uuid.UUID                 `json:"id"`
	WorkflowType   string                    `json:"workflow_type"`
	Status         string                    `json:"status"`
	Input          map[string]any            `json:"input,omitempty"`
	Output         map[string]map[string]any `json:"output,omitempty"`
	ErrorSummary   string                    `json:"error_summary,omitempty"`
	IdempotencyKey string                    `json:"idempotency_key,omitempty"`
	StartedAt      *time.Time                `json:"started_at,omitempty"`
	CompletedAt    *time.Time                `json:"completed_at,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// RunFromDomain конвертирует domain.RunRecord в RunResponse.
func RunFromDomain(r domain.RunRecord) RunResponse {
	return RunResponse{
		ID:             r.ID,
		WorkflowType:   r.WorkflowType,
		Status:         string(r.Status),
		Input:          r.Input,
		Output:         r.Output,
		ErrorSummary:   r.ErrorSummary,
		IdempotencyKey: r.IdempotencyKey,
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
		CreatedAt:      r.CreatedAt,
	}
}

// Trace DTOs

// TraceEntryResponse — запись журнала выполнения.
type TraceEntryResponse struct {
	Seq       int            `json:"seq"`
	Actor     string         `json:"actor"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// TraceEntryFromDomain конвертирует domain.TraceEntry в TraceEntryResponse.
func TraceEntryFromDomain(e domain.TraceEntry) TraceEntryResponse {
	return TraceEntryResponse{
		Seq:       e.Seq,
		Actor:     e.Actor,
		Payload:   e.Payload,
		Timestamp: e.Timestamp,
	}
}

// Schedule DTOs

// CreateScheduleRequest — запрос на создание schedule.
type CreateScheduleRequest struct {
	Name        string         `json:"name"`
	CronExpr    string         `json:"cron_expr,omitempty"`
	IntervalSec int            `json:"interval_sec,omitempty"`
	Timezone    string         `json:"timezone,omitempty"`
	Enabled     bool           `json:"enabled"`
	Params      map[string]any `json:"params,omitempty"`
}

// UpdateScheduleRequest — запрос на обновление schedule.
type UpdateScheduleRequest struct {
	Name        *string         `json:"name,omitempty"`
	CronExpr    *string         `json:"cron_expr,omitempty"`
	IntervalSec *int            `json:"interval_sec,omitempty"`
	Timezone    *string         `json:"timezone,omitempty"`
	Params      *map[string]any `json:"params,omitempty"`
}

// SetEnabledRequest — запрос на включение/выключение.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// ScheduleResponse — ответ с schedule.
type ScheduleResponse struct {
	ID           uuid.UUID      `json:"id"`
	WorkflowType string         `json:"workflow_type"`
	Name         string         `json:"name"`
	CronExpr     string         `json:"cron_expr,omitempty"`
	IntervalSec  int            `json:"interval_sec,omitempty"`
	Timezone     string         `json:"timezone"`
	Enabled      bool           `json:"enabled"`
	NextDueAt    *time.Time     `json:"next_due_at,omitempty"`
	LastRunAt    *time.Time     `json:"last_run_at,omitempty"`
	LastRunID    *uuid.UUID     `json:"last_run_id,omitempty"`
	Params       map[string]any `json:"params,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ScheduleFromDomain конвертирует domain.Schedule в ScheduleResponse.
func ScheduleFromDomain(s *domain.Schedule) ScheduleResponse {
	if s == nil {
		return ScheduleResponse{}
	}
	return ScheduleResponse{
		ID:           s.ID,
		WorkflowType: s.WorkflowType,
		Name:         s.Name,
		CronExpr:     s.CronExpr,
		IntervalSec:  s.IntervalSec,
		Timezone:     s.Timezone,
		Enabled:      s.Enabled,
		NextDueAt:    s.NextDueAt,
		LastRunAt:    s.LastRunAt,
		LastRunID:    s.LastRunID,
		Params:       s.Params,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
