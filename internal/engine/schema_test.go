package engine

import (
	"errors"
	"testing"
)

func TestValidateParams(t *testing.T) {
	tests := []struct {
		name         string
		workflowType string
		params       map[string]any
		wantErr      error
	}{
		{
			"valid candidate pipeline",
			"candidate_pipeline",
			map[string]any{"job_requirements": "FL license"},
			nil,
		},
		{
			"valid compliance audit",
			"compliance_audit",
			map[string]any{"deal_id": "d-1"},
			nil,
		},
		{
			"unknown workflow",
			"banana_workflow",
			map[string]any{},
			ErrUnknownWorkflow,
		},
		{
			"missing required key",
			"deal_closing",
			map[string]any{"other": 1},
			ErrInvalidParams,
		},
		{
			"empty required value",
			"client_communication",
			map[string]any{"recipient": ""},
			ErrInvalidParams,
		},
		{
			"nil required value",
			"performance_report",
			map[string]any{"period": nil},
			ErrInvalidParams,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParams(tt.workflowType, tt.params)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
