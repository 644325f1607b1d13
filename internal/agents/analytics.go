package agents

import (
	"context"
	"fmt"

	"github.com/impactrealty/conductor/internal/domain"
	"github.com/impactrealty/conductor/internal/interpret"
	"github.com/impactrealty/conductor/internal/llm"
)

// Analytics — воркер аналитики: метрики продуктивности
// и бизнес-отчёты по периодам.
type Analytics struct {
	llm llm.Client
}

// NewAnalytics создаёт воркера аналитики.
func NewAnalytics(client llm.Client) *Analytics {
	return &Analytics{llm: client}
}

// ID возвращает идентификатор воркера.
func (a *Analytics) ID() string { return domain.WorkerAnalytics }

// Execute диспетчеризует задачу аналитики по task_type.
func (a *Analytics) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	switch taskType(params, "performance_report") {
	case "performance_report":
		return a.performanceReport(ctx, params)
	case "pipeline_metrics":
		return a.pipelineMetrics(ctx, params)
	default:
		return a.general(ctx, params)
	}
}

const reportMock = `Performance report.
Closed volume is up 12 percent quarter over quarter, conversion is good.
We recommend reallocating ad spend toward referral campaigns.
You should review underperforming listings older than 60 days.`

func (a *Analytics) performanceReport(ctx context.Context, params map[string]any) (*Result, error) {
	period := getString(params, "period")
	if period == "" {
		period = "monthly"
	}

	system := fmt.Sprintf(`You are an analytics agent generating a %s
performance report for a real estate brokerage.

Context: %v

Cover volume, conversion, pipeline health, trends and recommendations.
Provide an executive summary and detailed findings.`, period, params)

	report, err := complete(ctx, a.llm, system,
		fmt.Sprintf("Generate %s performance report", period), reportMock)
	if err != nil {
		return Fail("performance report: %v", err), nil
	}

	return OK(map[string]any{
		"period":          period,
		"report":          report,
		"overall_score":   interpret.ExtractScore(report),
		"recommendations": interpret.ExtractRecommendations(report),
	}), nil
}

func (a *Analytics) pipelineMetrics(ctx context.Context, params map[string]any) (*Result, error) {
	// Метрики считаются по демонстрационному срезу:
	// продакшен-источник данных подключается снаружи.
	metrics := map[string]any{
		"total_candidates": 24,
		"qualified_rate":   62.5,
		"interview_rate":   33.3,
		"hire_rate":        12.5,
		"pipeline_health":  "good",
	}

	system := fmt.Sprintf(`You are an analytics agent assessing recruiting
pipeline health.

Metrics: %v

Identify bottlenecks and suggest improvements.`, metrics)

	analysis, err := complete(ctx, a.llm, system, "Analyze pipeline metrics",
		"Pipeline health is good. We recommend tightening the qualification stage to improve interview conversion.")
	if err != nil {
		return Fail("pipeline metrics: %v", err), nil
	}

	return OK(map[string]any{
		"metrics":         metrics,
		"analysis":        analysis,
		"recommendations": interpret.ExtractRecommendations(analysis),
	}), nil
}

func (a *Analytics) general(ctx context.Context, params map[string]any) (*Result, error) {
	response, err := complete(ctx, a.llm,
		"You are an analytics agent for a real estate brokerage.",
		"Task: "+getString(params, "description"),
		"Analytics task acknowledged; no specific handler matched.")
	if err != nil {
		return Fail("analytics task: %v", err), nil
	}

	return OK(map[string]any{"response": response}), nil
}
