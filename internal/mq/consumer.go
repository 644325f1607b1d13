package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler обрабатывает сообщение из очереди.
// Возврат ошибки приводит к Nack с requeue.
type Handler func(ctx context.Context, msg *Message) error

// ConsumerConfig — конфигурация консьюмера.
type ConsumerConfig struct {
	// Queue — очередь для чтения.
	Queue Queue

	// Handler — обработчик сообщений.
	Handler Handler

	// Prefetch — количество неподтверждённых сообщений на консьюмера.
	Prefetch int
}

// Consumer читает сообщения из очереди с ручным подтверждением.
type Consumer struct {
	conn   *Connection
	cfg    ConsumerConfig
	logger *slog.Logger
}

// NewConsumer создаёт новый Consumer.
func NewConsumer(conn *Connection, cfg ConsumerConfig, logger *slog.Logger) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	return &Consumer{
		conn:   conn,
		cfg:    cfg,
		logger: logger.With("queue", cfg.Queue),
	}
}

// Start запускает цикл потребления. Блокирует до отмены контекста.
// При потере соединения ждёт переподключения и возобновляет чтение.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		if err := c.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("consume interrupted, waiting for reconnect", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-c.conn.ReconnectNotify():
			c.logger.Info("resuming consumption after reconnect")
		}
	}
}

// consume читает сообщения до закрытия канала доставки или отмены контекста.
func (c *Consumer) consume(ctx context.Context) error {
	deliveries, err := c.setupConsume()
	if err != nil {
		return err
	}

	c.logger.Info("consumer started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// setupConsume настраивает канал и подписывается на очередь.
func (c *Consumer) setupConsume() (<-chan amqp.Delivery, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		string(c.cfg.Queue), // queue
		"",                  // consumer tag
		false,               // auto-ack: выключен, подтверждаем вручную
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,                 // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}

	return deliveries, nil
}

// handleDelivery разбирает и обрабатывает одно сообщение.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.Error("malformed message, dropping",
			"error", err,
			"message_id", d.MessageId,
		)
		// нечитаемое сообщение — в DLQ без requeue
		_ = d.Nack(false, false)
		return
	}

	if err := c.cfg.Handler(ctx, &msg); err != nil {
		c.logger.Error("handler failed, requeueing",
			"error", err,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		_ = d.Nack(false, true)
		return
	}

	if err := d.Ack(false); err != nil {
		c.logger.Error("ack failed", "error", err, "message_id", msg.ID)
	}
}

// ParsePayload десериализует payload сообщения в конкретный тип.
func ParsePayload[T any](msg *Message) (T, error) {
	var payload T

	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return payload, fmt.Errorf("remarshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("parse payload as %T: %w", payload, err)
	}
	return payload, nil
}
