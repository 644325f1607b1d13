package api

import (
	"net/http"
	"sort"

	"github.com/impactrealty/conductor/internal/domain"
)

// ListWorkflows возвращает каталог типов workflow.
// GET /api/v1/workflows
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	result := make([]WorkflowResponse, 0, len(domain.WorkflowTypes))
	for _, wt := range domain.WorkflowTypes {
		result = append(result, WorkflowFromDomain(wt))
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	List(w, result, len(result))
}

// GetWorkflow возвращает описание типа workflow.
// GET /api/v1/workflows/{type}
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	wt, ok := domain.WorkflowTypes[r.PathValue("type")]
	if !ok {
		NotFound(w, "unknown workflow type")
		return
	}

	Success(w, WorkflowFromDomain(wt))
}
