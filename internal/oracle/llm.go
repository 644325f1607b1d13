package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/impactrealty/conductor/internal/engine"
	"github.com/impactrealty/conductor/internal/llm"
)

// workerCatalog — описание воркеров для промпта маршрутизации.
var workerCatalog = map[string]string{
	"recruiting":      "candidate sourcing, qualification and engagement",
	"compliance":      "document validation and regulatory compliance",
	"deal_management": "transaction workflows and deal coordination",
	"communication":   "email, calendar and CRM communications",
	"analytics":       "performance metrics and business insights",
}

// LLM — оракул на reasoning-сервисе.
//
// Собирает промпт из текущего состояния запуска и просит модель
// назвать следующего воркера либо COMPLETE. Ответ не интерпретируется
// здесь: валидация токена — обязанность движка.
type LLM struct {
	client llm.Client
	known  []string
}

// NewLLM создаёт LLM-оракула. known — идентификаторы воркеров,
// которые модель вправе вернуть.
func NewLLM(client llm.Client, known []string) *LLM {
	return &LLM{client: client, known: known}
}

// Decide запрашивает у модели следующий шаг.
func (o *LLM) Decide(ctx context.Context, state *engine.RunState) (string, error) {
	system := o.systemPrompt(state)
	user := fmt.Sprintf("Workflow: %s, Context: %v", state.WorkflowType, state.Context)

	decision, err := o.client.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("routing decision: %w", err)
	}
	return decision, nil
}

func (o *LLM) systemPrompt(state *engine.RunState) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are the supervisor of a multi-agent workflow platform
for a real estate brokerage.

Your role is to orchestrate the workflow: %s

Available agents:
`, state.WorkflowType)

	for _, id := range o.known {
		desc := workerCatalog[id]
		if desc == "" {
			desc = "domain worker"
		}
		fmt.Fprintf(&sb, "- %s: %s\n", id, desc)
	}

	fmt.Fprintf(&sb, `
Current context: %v
Previous results: %v
Steps taken: %d

Analyze the workflow requirements and determine which agent should
handle the next step. If the workflow is complete, respond with
'COMPLETE'.

Respond with only the agent name or 'COMPLETE'.`,
		state.Context, resultsSummary(state), state.Steps)

	return sb.String()
}

// resultsSummary сжимает результаты до success-флагов: полные тексты
// воркеров раздувают промпт без пользы для маршрутизации.
func resultsSummary(state *engine.RunState) map[string]any {
	summary := make(map[string]any, len(state.Results))
	for id, fields := range state.Results {
		summary[id] = map[string]any{"success": fields["success"]}
	}
	return summary
}
