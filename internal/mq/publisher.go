package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/impactrealty/conductor/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeRunRequested MessageType = "run.requested"
	MessageTypeRunCompleted MessageType = "run.completed"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// RunRequestedPayload — payload события о созданном запуске.
type RunRequestedPayload struct {
	RunID        uuid.UUID `json:"run_id"`
	WorkflowType string    `json:"workflow_type"`
}

// RunCompletedPayload — payload события о завершённом запуске.
type RunCompletedPayload struct {
	RunID        uuid.UUID        `json:"run_id"`
	WorkflowType string           `json:"workflow_type"`
	Status       domain.RunStatus `json:"status"`
	ErrorSummary string           `json:"error_summary,omitempty"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishRunRequested публикует событие о запуске, ожидающем выполнения.
// Потребитель: Orchestrator.
func (p *Publisher) PublishRunRequested(ctx context.Context, runID uuid.UUID, workflowType string) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeRunRequested,
		Payload:   RunRequestedPayload{RunID: runID, WorkflowType: workflowType},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeRuns, RoutingKeyRequested, msg)
}

// PublishRunCompleted публикует событие о завершённом запуске.
// Потребители: внешние подписчики (уведомления, интеграции).
func (p *Publisher) PublishRunCompleted(ctx context.Context, payload RunCompletedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeRunCompleted,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeRuns, RoutingKeyCompleted, msg)
}
