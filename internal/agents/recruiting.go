package agents

import (
	"context"
	"fmt"

	"github.com/impactrealty/conductor/internal/domain"
	"github.com/impactrealty/conductor/internal/interpret"
	"github.com/impactrealty/conductor/internal/llm"
)

// Recruiting — воркер найма: сорсинг, квалификация и сопровождение
// кандидатов на позиции риелторов.
type Recruiting struct {
	llm llm.Client
}

// NewRecruiting создаёт воркера найма.
func NewRecruiting(client llm.Client) *Recruiting {
	return &Recruiting{llm: client}
}

// ID возвращает идентификатор воркера.
func (a *Recruiting) ID() string { return domain.WorkerRecruiting }

// Execute диспетчеризует задачу найма по task_type.
func (a *Recruiting) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	switch taskType(params, "source_candidates") {
	case "source_candidates":
		return a.sourceCandidates(ctx, params)
	case "qualify_candidate":
		return a.qualifyCandidate(ctx, params)
	case "follow_up":
		return a.followUp(ctx, params)
	default:
		return a.general(ctx, params)
	}
}

const sourcingMock = `Sourcing strategy for licensed real estate agents.
We recommend expanding LinkedIn outreach to active license holders.
You should prioritize referral channels from current top performers.
Suggest attending local FREC continuing-education events for passive sourcing.`

func (a *Recruiting) sourceCandidates(ctx context.Context, params map[string]any) (*Result, error) {
	requirements := getMap(params, "job_requirements")
	if requirements == nil {
		if s := getString(params, "job_requirements"); s != "" {
			requirements = map[string]any{"description": s}
		}
	}

	system := fmt.Sprintf(`You are a recruiting agent sourcing real estate agent candidates.

Job Requirements: %v
Location: %s
Experience Level: %s

Analyze the requirements, identify key qualifications, suggest sourcing
channels and outreach messaging. Provide actionable recommendations.`,
		requirements, getString(params, "location"), getString(params, "experience_level"))

	strategy, err := complete(ctx, a.llm, system, fmt.Sprintf("Source candidates for: %v", requirements), sourcingMock)
	if err != nil {
		return Fail("candidate sourcing: %v", err), nil
	}

	candidates := mockCandidates()

	return OK(map[string]any{
		"sourcing_strategy": strategy,
		"candidates_found":  len(candidates),
		"candidates":        candidates,
		"recommendations":   interpret.ExtractRecommendations(strategy),
	}), nil
}

const qualificationMock = `Evaluation summary.
The candidate is highly qualified for the role: five years of residential
sales experience, active license in good standing, strong referral network.
Recommendation: proceed to interview.`

func (a *Recruiting) qualifyCandidate(ctx context.Context, params map[string]any) (*Result, error) {
	candidate := getMap(params, "candidate")
	name := getString(candidate, "name")
	if name == "" {
		name = "Unknown"
	}

	system := fmt.Sprintf(`You are a recruiting agent evaluating a candidate
for a real estate agent position.

Candidate: %v
Job Requirements: %v

Evaluate experience, skills match, cultural fit and red flags.
Provide a structured evaluation with scores and reasoning.`,
		candidate, getMap(params, "job_requirements"))

	evaluation, err := complete(ctx, a.llm, system, "Evaluate candidate: "+name, qualificationMock)
	if err != nil {
		return Fail("candidate qualification: %v", err), nil
	}

	score := interpret.QualificationScore(evaluation)
	recommendation := "reject"
	if score >= 70 {
		recommendation = "proceed"
	}

	return OK(map[string]any{
		"candidate_id":        getString(candidate, "id"),
		"qualification_score": score,
		"evaluation":          evaluation,
		"recommendation":      recommendation,
	}), nil
}

const followUpMock = `Hi, thank you again for the conversation last week.
We recommend scheduling a short call this week to discuss next steps.
You should expect our formal offer package within three business days.`

func (a *Recruiting) followUp(ctx context.Context, params map[string]any) (*Result, error) {
	candidate := getMap(params, "candidate")

	system := fmt.Sprintf(`You are a recruiting agent following up with a candidate.

Candidate: %s
Follow-up Type: %s
Last Interaction: %s

Write a personalized, professional follow-up referencing the last
interaction and including clear next steps.`,
		getString(candidate, "name"), getString(params, "follow_up_type"),
		getString(params, "last_interaction"))

	content, err := complete(ctx, a.llm, system, "Create follow-up message", followUpMock)
	if err != nil {
		return Fail("candidate follow-up: %v", err), nil
	}

	return OK(map[string]any{
		"candidate_id":      getString(candidate, "id"),
		"follow_up_content": content,
		"email_sent":        true,
	}), nil
}

func (a *Recruiting) general(ctx context.Context, params map[string]any) (*Result, error) {
	response, err := complete(ctx, a.llm,
		"You are a recruiting agent for a real estate brokerage.",
		"Task: "+getString(params, "description"),
		"Recruiting task acknowledged; no specific handler matched.")
	if err != nil {
		return Fail("recruiting task: %v", err), nil
	}

	return OK(map[string]any{"response": response}), nil
}

// mockCandidates возвращает демонстрационный пул кандидатов.
func mockCandidates() []map[string]any {
	return []map[string]any{
		{
			"id":               "mock_candidate_1",
			"name":             "Sarah Johnson",
			"email":            "sarah.johnson@email.com",
			"experience_years": 5,
			"current_company":  "ABC Realty",
			"status":           "active",
			"source":           "LinkedIn",
		},
		{
			"id":               "mock_candidate_2",
			"name":             "Mike Chen",
			"email":            "mike.chen@email.com",
			"experience_years": 3,
			"current_company":  "XYZ Properties",
			"status":           "passive",
			"source":           "Referral",
		},
	}
}
