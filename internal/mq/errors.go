package mq

import "errors"

// Ошибки пакета mq.
var (
	// ErrNotConnected — соединение с RabbitMQ отсутствует.
	ErrNotConnected = errors.New("not connected to rabbitmq")
)
