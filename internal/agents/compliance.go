package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/impactrealty/conductor/internal/domain"
	"github.com/impactrealty/conductor/internal/interpret"
	"github.com/impactrealty/conductor/internal/llm"
)

// frecRules — правила Florida Real Estate Commission,
// подставляемые в промпты валидации.
var frecRules = map[string][]string{
	"license_requirements": {
		"Active real estate license required",
		"License must be current and in good standing",
		"Continuing education requirements met",
	},
	"disclosure_requirements": {
		"Property condition disclosure",
		"Lead-based paint disclosure (pre-1978 properties)",
		"Flood zone disclosure",
		"HOA disclosure if applicable",
	},
	"contract_requirements": {
		"Purchase and sale agreement must be complete",
		"All parties must sign and date",
		"Earnest money deposit documented",
		"Closing date specified",
	},
	"equal_housing": {
		"No discrimination based on protected classes",
		"Equal Housing Opportunity logo displayed",
		"Fair housing compliance in all marketing",
	},
}

// Compliance — воркер комплаенса: валидация документов,
// проверка лицензий и аудит сделок по правилам FREC.
type Compliance struct {
	llm llm.Client
}

// NewCompliance создаёт воркера комплаенса.
func NewCompliance(client llm.Client) *Compliance {
	return &Compliance{llm: client}
}

// ID возвращает идентификатор воркера.
func (a *Compliance) ID() string { return domain.WorkerCompliance }

// Execute диспетчеризует задачу комплаенса по task_type.
func (a *Compliance) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	switch taskType(params, "audit_deal") {
	case "validate_document":
		return a.validateDocument(ctx, params)
	case "check_license":
		return a.checkLicense(ctx, params)
	case "review_contract":
		return a.reviewContract(ctx, params)
	case "audit_deal":
		return a.auditDeal(ctx, params)
	default:
		return a.general(ctx, params)
	}
}

const validationMock = `Compliance assessment: mostly compliant.
Issue: missing flood zone disclosure attachment.
Issue: HOA disclosure required for this property type.
All signature blocks are complete and dated.`

func (a *Compliance) validateDocument(ctx context.Context, params map[string]any) (*Result, error) {
	doc := getMap(params, "document")
	docType := getString(doc, "type")

	system := fmt.Sprintf(`You are a compliance agent specializing in Florida
real estate regulations.

Document Type: %s
Document Content: %s

FREC Compliance Rules:
%s

Validate required fields, FREC compliance, completeness, missing
signatures and dates. Provide a detailed assessment with issues.`,
		docType, getString(doc, "content"), formatFRECRules())

	assessment, err := complete(ctx, a.llm, system,
		fmt.Sprintf("Validate %s document for compliance", docType), validationMock)
	if err != nil {
		return Fail("document validation: %v", err), nil
	}

	score := interpret.ExtractScore(assessment)
	issues := interpret.ExtractIssues(assessment)

	return OK(map[string]any{
		"document_id":       getString(doc, "id"),
		"document_type":     docType,
		"compliance_score":  score,
		"validation_result": assessment,
		"issues":            issues,
		"compliant":         score >= 85,
	}), nil
}

func (a *Compliance) checkLicense(ctx context.Context, params map[string]any) (*Result, error) {
	agent := getMap(params, "agent")
	licenseNumber := getString(agent, "license_number")

	system := fmt.Sprintf(`You are a compliance agent checking real estate
license compliance.

Agent: %v
License Number: %s

Check validity, expiration, continuing education and disciplinary actions.`,
		agent, licenseNumber)

	assessment, err := complete(ctx, a.llm, system,
		"Check license compliance", "License is active and in good standing, continuing education current.")
	if err != nil {
		return Fail("license check: %v", err), nil
	}

	// Продакшен-интеграция с реестром FREC отсутствует:
	// статус выводится из наличия номера лицензии.
	valid := licenseNumber != ""

	return OK(map[string]any{
		"agent_id":              getString(agent, "id"),
		"license_number":        licenseNumber,
		"compliance_assessment": assessment,
		"compliant":             valid,
		"license_status": map[string]any{
			"valid":        valid,
			"status":       licenseStatus(valid),
			"license_type": "sales_associate",
		},
	}), nil
}

func licenseStatus(valid bool) string {
	if valid {
		return "active"
	}
	return "inactive"
}

const contractReviewMock = `Contract review findings.
Critical: earnest money deposit not documented.
Major: closing date missing from section 4.
Minor issue with initials on page 2.`

func (a *Compliance) reviewContract(ctx context.Context, params map[string]any) (*Result, error) {
	contract := getMap(params, "contract")
	contractType := getString(contract, "type")
	if contractType == "" {
		contractType = "purchase_agreement"
	}

	system := fmt.Sprintf(`You are a compliance agent reviewing a %s.

Contract: %v

Review FREC compliance: required elements, disclosures, signatures,
dates, financial terms, contingencies, Equal Housing.`, contractType, contract)

	review, err := complete(ctx, a.llm, system,
		fmt.Sprintf("Review %s for compliance", contractType), contractReviewMock)
	if err != nil {
		return Fail("contract review: %v", err), nil
	}

	issues := interpret.SeverityIssues(review)
	score := interpret.WeightedScore(issues)

	return OK(map[string]any{
		"contract_id":      getString(contract, "id"),
		"contract_type":    contractType,
		"compliance_score": score,
		"review_result":    review,
		"issues":           issues,
		"approved":         score >= 90,
	}), nil
}

const auditMock = `Deal audit report.
Documents are complete and signatures are proper and valid.
One disclosure is missing: flood zone attachment.
Action: the listing agent must upload the flood zone disclosure.
Recommend re-checking HOA paperwork before closing.`

func (a *Compliance) auditDeal(ctx context.Context, params map[string]any) (*Result, error) {
	dealID := getString(params, "deal_id")
	if dealID == "" {
		dealID = getString(getMap(params, "deal"), "id")
	}

	system := fmt.Sprintf(`You are a compliance agent conducting a
comprehensive deal audit.

Deal: %s
Context: %v

Audit documents, signatures, disclosures, licenses, financials,
timeline and Equal Housing compliance. Provide a rating and action items.`,
		dealID, params)

	report, err := complete(ctx, a.llm, system,
		fmt.Sprintf("Audit deal %s for full compliance", dealID), auditMock)
	if err != nil {
		return Fail("deal audit: %v", err), nil
	}

	score := interpret.IndicatorScore(report)
	actionItems := interpret.ExtractActionItems(report)

	return OK(map[string]any{
		"deal_id":      dealID,
		"audit_score":  score,
		"audit_report": report,
		"action_items": actionItems,
		"compliant":    score >= 85,
	}), nil
}

func (a *Compliance) general(ctx context.Context, params map[string]any) (*Result, error) {
	response, err := complete(ctx, a.llm,
		"You are a compliance agent for a Florida real estate brokerage.",
		"Task: "+getString(params, "description"),
		"Compliance task acknowledged; no specific handler matched.")
	if err != nil {
		return Fail("compliance task: %v", err), nil
	}

	return OK(map[string]any{"response": response}), nil
}

// formatFRECRules форматирует правила FREC для промпта.
func formatFRECRules() string {
	var sb strings.Builder
	for _, category := range []string{
		"license_requirements", "disclosure_requirements",
		"contract_requirements", "equal_housing",
	} {
		sb.WriteString(strings.ToUpper(category))
		sb.WriteString(":\n")
		for _, rule := range frecRules[category] {
			sb.WriteString("  - ")
			sb.WriteString(rule)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
