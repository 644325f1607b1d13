package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/impactrealty/conductor/internal/agents"
	"github.com/impactrealty/conductor/internal/domain"
)

// scriptedOracle возвращает заранее заданную последовательность решений.
type scriptedOracle struct {
	mu        sync.Mutex
	decisions []string
	err       error
	calls     int
}

func (o *scriptedOracle) Decide(_ context.Context, _ *RunState) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls++
	if o.err != nil {
		return "", o.err
	}
	if o.calls > len(o.decisions) {
		return DecisionComplete, nil
	}
	return o.decisions[o.calls-1], nil
}

func (o *scriptedOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

// stubWorker — управляемый воркер для тестов.
type stubWorker struct {
	id     string
	result *agents.Result
	err    error
	panics bool
	calls  int
}

func (w *stubWorker) ID() string { return w.id }

func (w *stubWorker) Execute(_ context.Context, _ map[string]any) (*agents.Result, error) {
	w.calls++
	if w.panics {
		panic("boom")
	}
	if w.err != nil {
		return nil, w.err
	}
	return w.result, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, oracle Oracle, workers ...agents.Agent) (*Engine, *MemoryRecordStore, *MemoryCheckpointStore) {
	t.Helper()

	registry := agents.NewRegistry()
	for _, w := range workers {
		registry.Register(w)
	}

	records := NewMemoryRecordStore()
	checkpoints := NewMemoryCheckpointStore()

	e, err := New(Config{
		Oracle:      oracle,
		Workers:     registry,
		Checkpoints: checkpoints,
		Records:     records,
		Logger:      testLogger(),
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return e, records, checkpoints
}

func TestEngine_HappyPath(t *testing.T) {
	oracle := &scriptedOracle{decisions: []string{"recruiting", "compliance", "complete"}}
	recruiting := &stubWorker{id: "recruiting", result: agents.OK(map[string]any{"candidates_found": 2})}
	compliance := &stubWorker{id: "compliance", result: agents.OK(map[string]any{"compliant": true})}

	e, records, _ := newTestEngine(t, oracle, recruiting, compliance)

	res, err := e.Execute(context.Background(), "candidate_pipeline",
		map[string]any{"job_requirements": "FL license"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != domain.RunStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", res.Status)
	}
	if len(res.Errors) != 0 {
		t.Errorf("expected no errors, got %v", res.Errors)
	}
	if len(res.Trace) != 3 {
		t.Fatalf("expected trace of 3 entries, got %d", len(res.Trace))
	}
	if res.Trace[2].Actor != domain.ActorSupervisor {
		t.Errorf("expected completion marker by supervisor, got %s", res.Trace[2].Actor)
	}

	recruitingOut, ok := res.Results["recruiting"]
	if !ok {
		t.Fatal("expected recruiting result")
	}
	if recruitingOut["candidates_found"] != 2 || recruitingOut["success"] != true {
		t.Errorf("unexpected recruiting result: %v", recruitingOut)
	}
	if _, ok := res.Results["compliance"]; !ok {
		t.Error("expected compliance result")
	}

	rec, ok := records.GetRun(res.RunID)
	if !ok {
		t.Fatal("expected persisted run record")
	}
	if rec.Status != domain.RunStatusCompleted {
		t.Errorf("expected record COMPLETED, got %s", rec.Status)
	}
	if rec.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
	if len(records.ListTrace(res.RunID)) != 3 {
		t.Errorf("expected 3 persisted trace entries, got %d", len(records.ListTrace(res.RunID)))
	}
}

func TestEngine_UnknownTokenForcesCompletion(t *testing.T) {
	oracle := &scriptedOracle{decisions: []string{"banana"}}
	recruiting := &stubWorker{id: "recruiting", result: agents.OK(nil)}

	e, _, _ := newTestEngine(t, oracle, recruiting)

	res, err := e.Execute(context.Background(), "candidate_pipeline",
		map[string]any{"job_requirements": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != domain.RunStatusFailed {
		t.Errorf("expected FAILED, got %s", res.Status)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "banana") {
		t.Errorf("expected routing error mentioning the token, got %v", res.Errors)
	}
	if recruiting.calls != 0 {
		t.Errorf("unknown token must not reach worker lookup, got %d calls", recruiting.calls)
	}
	// Только маркер завершения: воркер не выполнялся
	if len(res.Trace) != 1 {
		t.Errorf("expected only completion marker in trace, got %d entries", len(res.Trace))
	}
}

func TestEngine_WorkerFailureIsNonFatal(t *testing.T) {
	oracle := &scriptedOracle{decisions: []string{"recruiting", "compliance", "complete"}}
	recruiting := &stubWorker{id: "recruiting", result: agents.Fail("crm down")}
	compliance := &stubWorker{id: "compliance", result: agents.OK(map[string]any{"compliant": true})}

	e, _, _ := newTestEngine(t, oracle, recruiting, compliance)

	res, err := e.Execute(context.Background(), "candidate_pipeline",
		map[string]any{"job_requirements": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Errors) != 1 {
		t.Fatalf("expected exactly 1 error, got %v", res.Errors)
	}
	if compliance.calls != 1 {
		t.Errorf("loop must continue after worker failure, compliance calls = %d", compliance.calls)
	}
	if oracle.callCount() != 3 {
		t.Errorf("expected 3 oracle calls, got %d", oracle.callCount())
	}
	if res.Status != domain.RunStatusFailed {
		t.Errorf("expected FAILED with partial results, got %s", res.Status)
	}
	// Частичные результаты возвращаются и при FAILED
	if _, ok := res.Results["recruiting"]; !ok {
		t.Error("expected failed worker result to be recorded")
	}
	if _, ok := res.Results["compliance"]; !ok {
		t.Error("expected successful worker result to be recorded")
	}
}

func TestEngine_StepBudget(t *testing.T) {
	oracle := &scriptedOracle{decisions: []string{
		"recruiting", "recruiting", "recruiting", "recruiting", "recruiting",
		"recruiting", "recruiting", "recruiting", "recruiting", "recruiting",
	}}
	recruiting := &stubWorker{id: "recruiting", result: agents.OK(nil)}

	registry := agents.NewRegistry()
	registry.Register(recruiting)

	e, err := New(Config{
		Oracle:   oracle,
		Workers:  registry,
		Logger:   testLogger(),
		MaxSteps: 5,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	res, err := e.Execute(context.Background(), "candidate_pipeline",
		map[string]any{"job_requirements": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if oracle.callCount() != 5 {
		t.Errorf("oracle invocations must not exceed budget: got %d, budget 5", oracle.callCount())
	}
	if recruiting.calls != 5 {
		t.Errorf("expected 5 worker invocations, got %d", recruiting.calls)
	}
	if res.Status != domain.RunStatusFailed {
		t.Errorf("expected FAILED on budget exhaustion, got %s", res.Status)
	}
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e, "budget") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected budget error, got %v", res.Errors)
	}
}

func TestEngine_OracleErrorIsFatal(t *testing.T) {
	oracle := &scriptedOracle{err: errors.New("reasoning service timeout")}
	e, _, _ := newTestEngine(t, oracle, &stubWorker{id: "recruiting", result: agents.OK(nil)})

	res, err := e.Execute(context.Background(), "candidate_pipeline",
		map[string]any{"job_requirements": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != domain.RunStatusFailed {
		t.Errorf("expected FAILED, got %s", res.Status)
	}
	if len(res.Errors) != 1 || !strings.HasPrefix(res.Errors[0], "oracle:") {
		t.Errorf("expected oracle error, got %v", res.Errors)
	}
}

func TestEngine_WorkerPanicRecovered(t *testing.T) {
	oracle := &scriptedOracle{decisions: []string{"recruiting", "complete"}}
	recruiting := &stubWorker{id: "recruiting", panics: true}

	e, _, _ := newTestEngine(t, oracle, recruiting)

	res, err := e.Execute(context.Background(), "candidate_pipeline",
		map[string]any{"job_requirements": "x"})
	if err != nil {
		t.Fatalf("panic must not escape the engine: %v", err)
	}

	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "panic") {
		t.Errorf("expected recorded panic error, got %v", res.Errors)
	}
	if oracle.callCount() != 2 {
		t.Errorf("loop must continue after panic, oracle calls = %d", oracle.callCount())
	}
}

func TestEngine_WorkerInfraErrorBecomesResult(t *testing.T) {
	oracle := &scriptedOracle{decisions: []string{"recruiting", "complete"}}
	recruiting := &stubWorker{id: "recruiting", err: errors.New("dial tcp: refused")}

	e, _, _ := newTestEngine(t, oracle, recruiting)

	res, err := e.Execute(context.Background(), "candidate_pipeline",
		map[string]any{"job_requirements": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := res.Results["recruiting"]
	if out == nil || out["success"] != false {
		t.Errorf("expected failed result recorded, got %v", out)
	}
}

func TestEngine_ValidationErrors(t *testing.T) {
	oracle := &scriptedOracle{}
	e, _, _ := newTestEngine(t, oracle, &stubWorker{id: "recruiting", result: agents.OK(nil)})

	if _, err := e.Execute(context.Background(), "no_such_workflow", nil); !errors.Is(err, ErrUnknownWorkflow) {
		t.Errorf("expected ErrUnknownWorkflow, got %v", err)
	}
	if _, err := e.Execute(context.Background(), "candidate_pipeline", map[string]any{}); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
	if oracle.callCount() != 0 {
		t.Errorf("oracle must not be called for invalid runs, got %d calls", oracle.callCount())
	}
}

// echoWorker копирует тег из параметров в результат — для проверки
// изоляции конкурентных запусков.
type echoWorker struct{ id string }

func (w *echoWorker) ID() string { return w.id }

func (w *echoWorker) Execute(_ context.Context, params map[string]any) (*agents.Result, error) {
	return agents.OK(map[string]any{"tag": params["tag"]}), nil
}

// onceOracle выполняет recruiting ровно один раз и завершает запуск.
// Решение зависит только от состояния запуска, поэтому детерминировано
// при любом числе конкурентных запусков.
type onceOracle struct{}

func (onceOracle) Decide(_ context.Context, s *RunState) (string, error) {
	if len(s.Results) == 0 {
		return "recruiting", nil
	}
	return DecisionComplete, nil
}

func TestEngine_ConcurrentRunsAreIsolated(t *testing.T) {
	e, _, _ := newTestEngine(t, onceOracle{}, &echoWorker{id: "recruiting"})

	var wg sync.WaitGroup
	results := make([]*RunResult, 2)
	tags := []string{"alpha", "beta"}

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.Execute(context.Background(), "candidate_pipeline",
				map[string]any{"job_requirements": "x", "tag": tags[i]})
			if err != nil {
				t.Errorf("run %d: %v", i, err)
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	if results[0] == nil || results[1] == nil {
		t.Fatal("expected both runs to finish")
	}
	if results[0].RunID == results[1].RunID {
		t.Error("concurrent runs must receive distinct run ids")
	}
	for i, res := range results {
		if got := res.Results["recruiting"]["tag"]; got != tags[i] {
			t.Errorf("run %d: expected tag %q, got %v", i, tags[i], got)
		}
	}
}

func TestEngine_IdempotentTermination(t *testing.T) {
	oracle := &scriptedOracle{decisions: []string{"complete"}}
	e, _, _ := newTestEngine(t, oracle)

	state := NewRunState("candidate_pipeline", map[string]any{"job_requirements": "x"})
	rec := &domain.RunRecord{ID: state.RunID, WorkflowType: state.WorkflowType, CreatedAt: time.Now()}
	rec.MarkRunning()

	e.run(context.Background(), state, rec)
	if !state.Completed {
		t.Fatal("expected completed state")
	}

	traceLen := len(state.Trace)
	status := rec.Status

	// Повторный запуск терминального состояния — no-op
	e.run(context.Background(), state, rec)
	if len(state.Trace) != traceLen {
		t.Errorf("terminal state must not grow trace: %d → %d", traceLen, len(state.Trace))
	}
	if rec.Status != status {
		t.Errorf("terminal status must not change: %s → %s", status, rec.Status)
	}
}

func TestEngine_CheckpointAndResume(t *testing.T) {
	oracle := &scriptedOracle{decisions: []string{"complete"}}
	e, _, checkpoints := newTestEngine(t, oracle, &stubWorker{id: "recruiting", result: agents.OK(nil)})

	// Прерванный запуск: состояние сохранено, Completed=false
	state := NewRunState("candidate_pipeline", map[string]any{"job_requirements": "x"})
	state.Steps = 1
	state.Results["recruiting"] = map[string]any{"success": true}
	if err := checkpoints.Save(context.Background(), state); err != nil {
		t.Fatalf("checkpoint save: %v", err)
	}

	res, err := e.Resume(context.Background(), state.RunID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}

	if res.RunID != state.RunID {
		t.Errorf("resume must keep run id: %s != %s", res.RunID, state.RunID)
	}
	if res.Status != domain.RunStatusCompleted {
		t.Errorf("expected COMPLETED after resume, got %s", res.Status)
	}
	// Накопленные результаты переживают resume
	if _, ok := res.Results["recruiting"]; !ok {
		t.Error("expected prior results to survive resume")
	}
}

func TestEngine_ResumeCompletedIsNoop(t *testing.T) {
	oracle := &scriptedOracle{decisions: []string{"recruiting"}}
	e, _, checkpoints := newTestEngine(t, oracle, &stubWorker{id: "recruiting", result: agents.OK(nil)})

	state := NewRunState("candidate_pipeline", map[string]any{"job_requirements": "x"})
	state.Completed = true
	if err := checkpoints.Save(context.Background(), state); err != nil {
		t.Fatalf("checkpoint save: %v", err)
	}

	res, err := e.Resume(context.Background(), state.RunID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if oracle.callCount() != 0 {
		t.Errorf("resume of terminal run must not call oracle, got %d calls", oracle.callCount())
	}
	if res.RunID != state.RunID {
		t.Errorf("unexpected run id: %s", res.RunID)
	}
}

func TestEngine_ResumeUnknownRun(t *testing.T) {
	oracle := &scriptedOracle{}
	e, _, _ := newTestEngine(t, oracle)

	_, err := e.Resume(context.Background(), uuid.New())
	if !errors.Is(err, ErrCheckpointNotFound) {
		t.Errorf("expected ErrCheckpointNotFound, got %v", err)
	}
}

func TestEngine_ExecuteRunPendingPath(t *testing.T) {
	oracle := &scriptedOracle{decisions: []string{"compliance", "complete"}}
	compliance := &stubWorker{id: "compliance", result: agents.OK(map[string]any{"compliant": true})}

	e, records, _ := newTestEngine(t, oracle, compliance)

	rec := &domain.RunRecord{
		ID:           uuid.New(),
		WorkflowType: "compliance_audit",
		Status:       domain.RunStatusPending,
		Input:        map[string]any{"deal_id": "deal-1"},
		CreatedAt:    time.Now(),
	}
	if err := records.CreateRun(context.Background(), rec); err != nil {
		t.Fatalf("create run: %v", err)
	}

	res, err := e.ExecuteRun(context.Background(), rec)
	if err != nil {
		t.Fatalf("execute run: %v", err)
	}

	if res.RunID != rec.ID {
		t.Errorf("run id must match the record: %s != %s", res.RunID, rec.ID)
	}

	stored, _ := records.GetRun(rec.ID)
	if stored.Status != domain.RunStatusCompleted {
		t.Errorf("expected COMPLETED record, got %s", stored.Status)
	}
	if stored.CompletedAt == nil || stored.StartedAt == nil {
		t.Error("expected started_at and completed_at to be set")
	}
}

func TestEngine_ExecuteRunInvalidParams(t *testing.T) {
	oracle := &scriptedOracle{}
	e, records, _ := newTestEngine(t, oracle)

	rec := &domain.RunRecord{
		ID:           uuid.New(),
		WorkflowType: "compliance_audit",
		Status:       domain.RunStatusPending,
		Input:        map[string]any{},
		CreatedAt:    time.Now(),
	}
	if err := records.CreateRun(context.Background(), rec); err != nil {
		t.Fatalf("create run: %v", err)
	}

	if _, err := e.ExecuteRun(context.Background(), rec); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}

	stored, _ := records.GetRun(rec.ID)
	if stored.Status != domain.RunStatusFailed {
		t.Errorf("invalid pending run must be marked FAILED, got %s", stored.Status)
	}
}

func TestNormalizeDecision(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"recruiting", "recruiting"},
		{" Complete.", "complete"},
		{`"COMPLIANCE"`, "compliance"},
		{"'deal_management'", "deal_management"},
	}

	for _, tt := range tests {
		if got := normalizeDecision(tt.raw); got != tt.want {
			t.Errorf("normalizeDecision(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
