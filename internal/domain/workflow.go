package domain

// Идентификаторы воркеров.
//
// Движок не привязан к конкретному набору — известные воркеры определяются
// реестром (agents.Registry). Константы нужны каталогу workflow-типов
// и правилам маршрутизации.
const (
	WorkerRecruiting     = "recruiting"
	WorkerCompliance     = "compliance"
	WorkerDealManagement = "deal_management"
	WorkerCommunication  = "communication"
	WorkerAnalytics      = "analytics"
)

// WorkflowType — описание типа workflow.
//
// RequiredKeys проверяются один раз при создании run (schema-валидация
// контекста): отсутствие ключа — ошибка создания, а не тихий сбой
// где-то в середине выполнения.
//
// Plan — маршрут по умолчанию для rule-оракула. LLM-оракул волен
// отклоняться от него; движок в любом случае валидирует решение.
type WorkflowType struct {
	// Name — имя типа: "candidate_pipeline", "deal_closing" и т.д.
	Name string `json:"name"`

	// Description — человекочитаемое описание.
	Description string `json:"description"`

	// RequiredKeys — обязательные ключи контекста.
	RequiredKeys []string `json:"required_keys,omitempty"`

	// Plan — последовательность воркеров для rule-оракула.
	Plan []string `json:"plan"`
}

// WorkflowTypes — каталог поддерживаемых типов workflow.
var WorkflowTypes = map[string]WorkflowType{
	"candidate_pipeline": {
		Name:         "candidate_pipeline",
		Description:  "Sourcing and qualification of agent candidates",
		RequiredKeys: []string{"job_requirements"},
		Plan:         []string{WorkerRecruiting, WorkerCompliance},
	},
	"compliance_audit": {
		Name:         "compliance_audit",
		Description:  "Document validation and regulatory audit of a deal",
		RequiredKeys: []string{"deal_id"},
		Plan:         []string{WorkerCompliance},
	},
	"deal_closing": {
		Name:         "deal_closing",
		Description:  "Transaction milestones, compliance check and client notification",
		RequiredKeys: []string{"deal_id"},
		Plan:         []string{WorkerDealManagement, WorkerCompliance, WorkerCommunication},
	},
	"client_communication": {
		Name:         "client_communication",
		Description:  "Outbound email and calendar coordination",
		RequiredKeys: []string{"recipient"},
		Plan:         []string{WorkerCommunication},
	},
	"performance_report": {
		Name:         "performance_report",
		Description:  "Business metrics analysis and report delivery",
		RequiredKeys: []string{"period"},
		Plan:         []string{WorkerAnalytics, WorkerCommunication},
	},
}

// KnownWorkflowType проверяет, что тип workflow есть в каталоге.
func KnownWorkflowType(name string) bool {
	_, ok := WorkflowTypes[name]
	return ok
}
