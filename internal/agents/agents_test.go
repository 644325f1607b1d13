package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/impactrealty/conductor/internal/llm"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(nil)

	want := []string{"analytics", "communication", "compliance", "deal_management", "recruiting"}
	got := r.IDs()

	if len(got) != len(want) {
		t.Fatalf("expected %d agents, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDs()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := DefaultRegistry(nil)

	_, err := r.Get("banana")
	if !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestRecruiting_SourceCandidates_Mock(t *testing.T) {
	a := NewRecruiting(nil)

	res, err := a.Execute(context.Background(), map[string]any{
		"task_type":        "source_candidates",
		"job_requirements": map[string]any{"license": "FL sales associate"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}

	if found := res.Fields["candidates_found"]; found != 2 {
		t.Errorf("expected 2 candidates found, got %v", found)
	}

	candidates, ok := res.Fields["candidates"].([]map[string]any)
	if !ok || len(candidates) != 2 {
		t.Fatalf("unexpected candidates payload: %v", res.Fields["candidates"])
	}
	if candidates[0]["name"] != "Sarah Johnson" {
		t.Errorf("unexpected first candidate: %v", candidates[0]["name"])
	}
}

func TestRecruiting_QualifyCandidate_Mock(t *testing.T) {
	a := NewRecruiting(nil)

	res, err := a.Execute(context.Background(), map[string]any{
		"task_type": "qualify_candidate",
		"candidate": map[string]any{"id": "c1", "name": "Sarah Johnson"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}

	if score := res.Fields["qualification_score"]; score != 85 {
		t.Errorf("expected score 85 for mock evaluation, got %v", score)
	}
	if rec := res.Fields["recommendation"]; rec != "proceed" {
		t.Errorf("expected proceed, got %v", rec)
	}
}

func TestRecruiting_QualifyCandidate_ScriptedLLM(t *testing.T) {
	client := &llm.Static{Response: "The candidate is only partially qualified."}
	a := NewRecruiting(client)

	res, err := a.Execute(context.Background(), map[string]any{
		"task_type": "qualify_candidate",
		"candidate": map[string]any{"name": "Mike Chen"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score := res.Fields["qualification_score"]; score != 60 {
		t.Errorf("expected score 60, got %v", score)
	}
	if rec := res.Fields["recommendation"]; rec != "reject" {
		t.Errorf("expected reject, got %v", rec)
	}
	if client.Calls != 1 {
		t.Errorf("expected 1 llm call, got %d", client.Calls)
	}
}

func TestCompliance_ValidateDocument_Mock(t *testing.T) {
	a := NewCompliance(nil)

	res, err := a.Execute(context.Background(), map[string]any{
		"task_type": "validate_document",
		"document":  map[string]any{"id": "d1", "type": "disclosure"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}

	if score := res.Fields["compliance_score"]; score != 85 {
		t.Errorf("expected score 85, got %v", score)
	}
	issues, _ := res.Fields["issues"].([]string)
	if len(issues) != 2 {
		t.Errorf("expected 2 issues, got %d: %v", len(issues), issues)
	}
	if compliant := res.Fields["compliant"]; compliant != true {
		t.Errorf("expected compliant at score 85, got %v", compliant)
	}
}

func TestCompliance_ReviewContract_Mock(t *testing.T) {
	a := NewCompliance(nil)

	res, err := a.Execute(context.Background(), map[string]any{
		"task_type": "review_contract",
		"contract":  map[string]any{"id": "k1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// critical (-15) + major (-10) + minor (-5) от 100
	if score := res.Fields["compliance_score"]; score != 70 {
		t.Errorf("expected score 70, got %v", score)
	}
	if approved := res.Fields["approved"]; approved != false {
		t.Errorf("expected not approved, got %v", approved)
	}
}

func TestCompliance_AuditDeal_Mock(t *testing.T) {
	a := NewCompliance(nil)

	res, err := a.Execute(context.Background(), map[string]any{
		"task_type": "audit_deal",
		"deal_id":   "deal-42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}

	if res.Fields["deal_id"] != "deal-42" {
		t.Errorf("unexpected deal_id: %v", res.Fields["deal_id"])
	}
	items, _ := res.Fields["action_items"].([]string)
	if len(items) == 0 {
		t.Error("expected action items from audit report")
	}
}

func TestCommunication_SendEmail_RequiresRecipient(t *testing.T) {
	a := NewCommunication(nil)

	res, err := a.Execute(context.Background(), map[string]any{
		"task_type": "send_email",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Error("expected logical failure without recipient")
	}
	if res.Error == "" {
		t.Error("expected error message in result")
	}
}

func TestCommunication_SendEmail_Mock(t *testing.T) {
	a := NewCommunication(nil)

	res, err := a.Execute(context.Background(), map[string]any{
		"task_type": "send_email",
		"recipient": "client@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}
	if res.Fields["email_sent"] != true {
		t.Errorf("expected email_sent=true, got %v", res.Fields["email_sent"])
	}
}

func TestAgents_LLMFailureIsLogical(t *testing.T) {
	client := &llm.Static{Err: errors.New("connection refused")}
	a := NewAnalytics(client)

	res, err := a.Execute(context.Background(), map[string]any{
		"task_type": "performance_report",
		"period":    "weekly",
	})
	if err != nil {
		t.Fatalf("llm failure must not be an infrastructure error, got %v", err)
	}
	if res.Success {
		t.Error("expected logical failure on llm error")
	}
	if res.Error == "" {
		t.Error("expected error message in result")
	}
}

func TestDealManagement_AdvanceDeal_Mock(t *testing.T) {
	a := NewDealManagement(nil)

	res, err := a.Execute(context.Background(), map[string]any{
		"deal_id": "deal-7",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}

	milestones, _ := res.Fields["milestones"].([]string)
	if len(milestones) != len(dealMilestones) {
		t.Errorf("expected %d milestones, got %d", len(dealMilestones), len(milestones))
	}
}

func TestAnalytics_PerformanceReport_Mock(t *testing.T) {
	a := NewAnalytics(nil)

	res, err := a.Execute(context.Background(), map[string]any{
		"period": "quarterly",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}
	if res.Fields["period"] != "quarterly" {
		t.Errorf("unexpected period: %v", res.Fields["period"])
	}

	recs, _ := res.Fields["recommendations"].([]string)
	if len(recs) == 0 {
		t.Error("expected recommendations from mock report")
	}
}
