package engine

import (
	"testing"

	"github.com/impactrealty/conductor/internal/domain"
)

func TestRunState_MergedContext(t *testing.T) {
	state := NewRunState("candidate_pipeline", map[string]any{"job_requirements": "x"})
	state.Results["recruiting"] = map[string]any{"candidates_found": 2}

	merged := state.MergedContext()

	if merged["job_requirements"] != "x" {
		t.Errorf("expected run params in merged context, got %v", merged)
	}

	prior, ok := merged["results"].(map[string]any)
	if !ok {
		t.Fatalf("expected prior results under 'results', got %T", merged["results"])
	}
	if _, ok := prior["recruiting"]; !ok {
		t.Error("expected recruiting result in prior results")
	}

	// Мутация merged-копии не трогает состояние
	merged["job_requirements"] = "mutated"
	if state.Context["job_requirements"] != "x" {
		t.Error("merged context must be a copy")
	}
}

func TestRunState_AppendAfterCompletionIsNoop(t *testing.T) {
	state := NewRunState("candidate_pipeline", nil)
	state.appendTrace("recruiting", map[string]any{"decision": "recruiting"})
	state.appendError("first")

	state.Completed = true
	state.appendTrace("compliance", nil)
	state.appendError("second")

	if len(state.Trace) != 1 {
		t.Errorf("expected 1 trace entry after completion, got %d", len(state.Trace))
	}
	if len(state.Errors) != 1 {
		t.Errorf("expected 1 error after completion, got %d", len(state.Errors))
	}
}

func TestRunState_TraceSequence(t *testing.T) {
	state := NewRunState("candidate_pipeline", nil)
	state.appendTrace("recruiting", nil)
	state.appendTrace("compliance", nil)
	state.appendTrace(domain.ActorSupervisor, nil)

	for i, entry := range state.Trace {
		if entry.Seq != i+1 {
			t.Errorf("trace[%d].Seq = %d, want %d", i, entry.Seq, i+1)
		}
		if entry.RunID != state.RunID {
			t.Errorf("trace[%d] carries wrong run id", i)
		}
	}
}

func TestRunState_Status(t *testing.T) {
	state := NewRunState("candidate_pipeline", nil)
	if state.Status() != domain.RunStatusCompleted {
		t.Errorf("expected COMPLETED without errors, got %s", state.Status())
	}

	state.appendError("oops")
	if state.Status() != domain.RunStatusFailed {
		t.Errorf("expected FAILED with errors, got %s", state.Status())
	}
}

func TestRunState_CloneIsIndependent(t *testing.T) {
	state := NewRunState("candidate_pipeline", map[string]any{"k": "v"})
	state.Results["recruiting"] = map[string]any{"success": true}
	state.appendTrace("recruiting", nil)
	state.appendError("e1")

	clone := state.Clone()

	state.Context["k"] = "changed"
	state.Results["compliance"] = map[string]any{}
	state.appendTrace("compliance", nil)
	state.appendError("e2")

	if clone.Context["k"] != "v" {
		t.Error("clone context must not observe later mutations")
	}
	if len(clone.Results) != 1 {
		t.Errorf("clone results grew: %d", len(clone.Results))
	}
	if len(clone.Trace) != 1 || len(clone.Errors) != 1 {
		t.Errorf("clone trace/errors grew: %d/%d", len(clone.Trace), len(clone.Errors))
	}
	if clone.RunID != state.RunID {
		t.Error("clone must keep the run id")
	}
}
