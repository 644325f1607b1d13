package agents

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/impactrealty/conductor/internal/llm"
)

// Agent — интерфейс доменного воркера.
//
// Реализации: Recruiting, Compliance, DealManagement, Communication,
// Analytics. Воркер получает параметры запуска и возвращает Result;
// error возвращается только для инфраструктурных сбоев — логические
// ошибки задачи идут в Result.Error.
type Agent interface {
	// ID возвращает идентификатор воркера (ключ маршрутизации).
	ID() string

	// Execute выполняет задачу воркера.
	// Воркер должен проверять ctx.Done() для graceful shutdown.
	Execute(ctx context.Context, params map[string]any) (*Result, error)
}

// Result — результат выполнения воркера.
type Result struct {
	// Success — успешно ли завершилась задача.
	Success bool

	// Error — сообщение об ошибке (логическая ошибка выполнения).
	// Инфраструктурные ошибки возвращаются через error в Execute().
	Error string

	// Fields — выходные данные воркера.
	Fields map[string]any
}

// Fail создаёт неуспешный Result с сообщением об ошибке.
func Fail(format string, args ...any) *Result {
	return &Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// OK создаёт успешный Result с выходными данными.
func OK(fields map[string]any) *Result {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Result{Success: true, Fields: fields}
}

// Registry — реестр воркеров по идентификатору.
// Потокобезопасен.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// DefaultRegistry создаёт реестр со всеми стандартными воркерами.
// client может быть nil — тогда воркеры работают в mock-режиме.
func DefaultRegistry(client llm.Client) *Registry {
	r := NewRegistry()
	r.Register(NewRecruiting(client))
	r.Register(NewCompliance(client))
	r.Register(NewDealManagement(client))
	r.Register(NewCommunication(client))
	r.Register(NewAnalytics(client))
	return r
}

// Register добавляет воркера в реестр.
// Воркер с тем же идентификатором перезаписывается.
func (r *Registry) Register(a Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.ID()] = a
}

// Get возвращает воркера по идентификатору.
// Возвращает ErrAgentNotFound, если воркер не зарегистрирован.
func (r *Registry) Get(id string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	return a, nil
}

// Has проверяет, зарегистрирован ли воркер.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.agents[id]
	return ok
}

// IDs возвращает отсортированный список идентификаторов воркеров.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// taskType извлекает task_type из параметров запуска.
func taskType(params map[string]any, fallback string) string {
	if t := getString(params, "task_type"); t != "" {
		return t
	}
	return fallback
}

// complete вызывает LLM либо возвращает mock-текст, если клиента нет.
func complete(ctx context.Context, c llm.Client, system, user, mock string) (string, error) {
	if c == nil {
		return mock, nil
	}
	return c.Complete(ctx, system, user)
}

// getString извлекает строковое значение из параметров.
func getString(params map[string]any, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getMap извлекает map из параметров.
func getMap(params map[string]any, key string) map[string]any {
	if v, ok := params[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}
