package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/impactrealty/conductor/internal/domain"
	"github.com/impactrealty/conductor/internal/engine"
	"github.com/impactrealty/conductor/internal/llm"
)

func TestRule_FollowsPlan(t *testing.T) {
	o := NewRule()
	state := engine.NewRunState("deal_closing", map[string]any{"deal_id": "d1"})

	plan := domain.WorkflowTypes["deal_closing"].Plan
	for i, want := range plan {
		state.Steps = i + 1
		got, err := o.Decide(context.Background(), state)
		if err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
		if got != want {
			t.Errorf("step %d: got %s, want %s", i+1, got, want)
		}
	}

	state.Steps = len(plan) + 1
	got, err := o.Decide(context.Background(), state)
	if err != nil {
		t.Fatalf("completion step: %v", err)
	}
	if got != engine.DecisionComplete {
		t.Errorf("expected completion after plan, got %s", got)
	}
}

func TestRule_UnknownWorkflow(t *testing.T) {
	o := NewRule()
	state := engine.NewRunState("no_such_workflow", nil)
	state.Steps = 1

	if _, err := o.Decide(context.Background(), state); err == nil {
		t.Error("expected error for workflow without a plan")
	}
}

func TestLLM_PassesDecisionThrough(t *testing.T) {
	client := &llm.Static{Response: "COMPLIANCE"}
	o := NewLLM(client, []string{"recruiting", "compliance"})

	state := engine.NewRunState("compliance_audit", map[string]any{"deal_id": "d1"})
	state.Steps = 1

	got, err := o.Decide(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Нормализация токена — обязанность движка, не оракула
	if got != "COMPLIANCE" {
		t.Errorf("expected raw decision, got %q", got)
	}
	if client.Calls != 1 {
		t.Errorf("expected 1 llm call, got %d", client.Calls)
	}
}

func TestLLM_TransportErrorPropagates(t *testing.T) {
	client := &llm.Static{Err: errors.New("timeout")}
	o := NewLLM(client, []string{"recruiting"})

	state := engine.NewRunState("compliance_audit", nil)
	if _, err := o.Decide(context.Background(), state); err == nil {
		t.Error("expected transport error to propagate")
	}
}

func TestLLM_PromptListsKnownWorkers(t *testing.T) {
	o := NewLLM(&llm.Static{}, []string{"recruiting", "analytics"})

	state := engine.NewRunState("performance_report", map[string]any{"period": "monthly"})
	prompt := o.systemPrompt(state)

	for _, id := range []string{"recruiting", "analytics"} {
		if !strings.Contains(prompt, "- "+id+":") {
			t.Errorf("prompt must list worker %s", id)
		}
	}
	if !strings.Contains(prompt, "COMPLETE") {
		t.Error("prompt must describe the completion sentinel")
	}
}
