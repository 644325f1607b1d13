package oracle

import (
	"context"
	"fmt"

	"github.com/impactrealty/conductor/internal/domain"
	"github.com/impactrealty/conductor/internal/engine"
)

// Rule — детерминированный оракул по каталогу workflow.
//
// Маршрут берётся из плана типа workflow: n-й вызов возвращает n-й
// шаг плана, после последнего шага — сентинел завершения. Ошибка
// воркера на маршрут не влияет: план проходится до конца, частичные
// результаты фиксируются движком.
type Rule struct{}

// NewRule создаёт rule-оракула.
func NewRule() *Rule {
	return &Rule{}
}

// Decide возвращает следующий шаг плана workflow.
func (o *Rule) Decide(_ context.Context, state *engine.RunState) (string, error) {
	wt, ok := domain.WorkflowTypes[state.WorkflowType]
	if !ok {
		return "", fmt.Errorf("no routing plan for workflow type %q", state.WorkflowType)
	}

	// Steps уже включает текущий вызов оракула
	idx := state.Steps - 1
	if idx < 0 || idx >= len(wt.Plan) {
		return engine.DecisionComplete, nil
	}
	return wt.Plan[idx], nil
}
