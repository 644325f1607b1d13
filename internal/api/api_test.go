package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestHandler() *Handler {
	// Репозитории nil: тесты покрывают пути, которые завершаются
	// до обращения к БД (валидация, статический каталог).
	return NewHandler(Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func serve(h *Handler, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestListWorkflows(t *testing.T) {
	rec := serve(newTestHandler(), http.MethodGet, "/api/v1/workflows", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Data []WorkflowResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Data) != 5 {
		t.Fatalf("got %d workflows, want 5", len(resp.Data))
	}
	// Каталог отсортирован по имени
	if resp.Data[0].Name != "candidate_pipeline" {
		t.Errorf("first workflow = %q, want candidate_pipeline", resp.Data[0].Name)
	}
}

func TestGetWorkflow_Unknown(t *testing.T) {
	rec := serve(newTestHandler(), http.MethodGet, "/api/v1/workflows/mystery", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateRun_UnknownWorkflow(t *testing.T) {
	rec := serve(newTestHandler(), http.MethodPost, "/api/v1/workflows/mystery/runs", `{"params":{}}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateRun_MissingParams(t *testing.T) {
	rec := serve(newTestHandler(), http.MethodPost, "/api/v1/workflows/compliance_audit/runs", `{"params":{}}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Error.Message, "deal_id") {
		t.Errorf("error message %q does not name the missing key", resp.Error.Message)
	}
}

func TestCreateRun_MalformedBody(t *testing.T) {
	rec := serve(newTestHandler(), http.MethodPost, "/api/v1/workflows/compliance_audit/runs", `{notjson`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateSchedule_RequiresTrigger(t *testing.T) {
	body := `{"name":"weekly","params":{"deal_id":"d-1"}}`
	rec := serve(newTestHandler(), http.MethodPost, "/api/v1/workflows/compliance_audit/schedules", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateSchedule_InvalidCron(t *testing.T) {
	body := `{"name":"weekly","cron_expr":"not a cron","params":{"deal_id":"d-1"}}`
	rec := serve(newTestHandler(), http.MethodPost, "/api/v1/workflows/compliance_audit/schedules", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
