package agents

import (
	"context"
	"fmt"

	"github.com/impactrealty/conductor/internal/domain"
	"github.com/impactrealty/conductor/internal/interpret"
	"github.com/impactrealty/conductor/internal/llm"
)

// dealMilestones — контрольные точки сделки в порядке прохождения.
var dealMilestones = []string{
	"contract_executed",
	"earnest_money_deposited",
	"inspection_completed",
	"financing_approved",
	"title_cleared",
	"closing_scheduled",
}

// DealManagement — воркер сопровождения сделок: контрольные точки,
// контингенции и координация закрытия.
type DealManagement struct {
	llm llm.Client
}

// NewDealManagement создаёт воркера сопровождения сделок.
func NewDealManagement(client llm.Client) *DealManagement {
	return &DealManagement{llm: client}
}

// ID возвращает идентификатор воркера.
func (a *DealManagement) ID() string { return domain.WorkerDealManagement }

// Execute диспетчеризует задачу сделки по task_type.
func (a *DealManagement) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	switch taskType(params, "advance_deal") {
	case "advance_deal":
		return a.advanceDeal(ctx, params)
	case "track_contingencies":
		return a.trackContingencies(ctx, params)
	case "coordinate_closing":
		return a.coordinateClosing(ctx, params)
	default:
		return a.general(ctx, params)
	}
}

const advanceMock = `Deal status review.
Contract executed and earnest money deposited, both complete.
Inspection report is pending: the buyer should confirm the appointment.
Next milestone: inspection_completed.`

func (a *DealManagement) advanceDeal(ctx context.Context, params map[string]any) (*Result, error) {
	dealID := getString(params, "deal_id")

	system := fmt.Sprintf(`You are a deal management agent for a real estate
brokerage.

Deal: %s
Milestones (in order): %v
Context: %v

Determine which milestones are complete, which is next, and what
blocks progress. Provide concrete next steps.`, dealID, dealMilestones, params)

	review, err := complete(ctx, a.llm, system,
		fmt.Sprintf("Advance deal %s", dealID), advanceMock)
	if err != nil {
		return Fail("deal advancement: %v", err), nil
	}

	return OK(map[string]any{
		"deal_id":         dealID,
		"status_review":   review,
		"milestones":      dealMilestones,
		"recommendations": interpret.ExtractRecommendations(review),
	}), nil
}

const contingenciesMock = `Contingency tracking.
Inspection contingency expires in 4 days: the buyer must deliver the
report or waive the contingency.
Financing contingency is on track, lender confirmed underwriting.
Issue: appraisal not yet ordered.`

func (a *DealManagement) trackContingencies(ctx context.Context, params map[string]any) (*Result, error) {
	dealID := getString(params, "deal_id")

	system := fmt.Sprintf(`You are a deal management agent tracking
contingency deadlines for deal %s.

Context: %v

List each contingency, its deadline status, and required actions.`, dealID, params)

	report, err := complete(ctx, a.llm, system,
		"Track contingency deadlines", contingenciesMock)
	if err != nil {
		return Fail("contingency tracking: %v", err), nil
	}

	return OK(map[string]any{
		"deal_id":      dealID,
		"report":       report,
		"issues":       interpret.ExtractIssues(report),
		"action_items": interpret.ExtractActionItems(report),
	}), nil
}

const closingMock = `Closing coordination plan.
Title work is complete and correct, closing documents are proper.
Action: schedule the closing appointment with the title company.
The seller must deliver keys and garage remotes at closing.`

func (a *DealManagement) coordinateClosing(ctx context.Context, params map[string]any) (*Result, error) {
	dealID := getString(params, "deal_id")

	system := fmt.Sprintf(`You are a deal management agent coordinating the
closing of deal %s.

Context: %v

Verify title work, closing documents and funding; produce a closing
checklist with owners for each item.`, dealID, params)

	plan, err := complete(ctx, a.llm, system,
		fmt.Sprintf("Coordinate closing for deal %s", dealID), closingMock)
	if err != nil {
		return Fail("closing coordination: %v", err), nil
	}

	readiness := interpret.IndicatorScore(plan)

	return OK(map[string]any{
		"deal_id":         dealID,
		"closing_plan":    plan,
		"readiness_score": readiness,
		"ready_to_close":  readiness >= 85,
		"action_items":    interpret.ExtractActionItems(plan),
	}), nil
}

func (a *DealManagement) general(ctx context.Context, params map[string]any) (*Result, error) {
	response, err := complete(ctx, a.llm,
		"You are a deal management agent for a real estate brokerage.",
		"Task: "+getString(params, "description"),
		"Deal management task acknowledged; no specific handler matched.")
	if err != nil {
		return Fail("deal management task: %v", err), nil
	}

	return OK(map[string]any{"response": response}), nil
}
