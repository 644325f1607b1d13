// Package mq реализует обмен сообщениями через RabbitMQ.
//
// Топология:
//   - conductor.runs (direct) — события жизненного цикла запусков:
//     runs.requested потребляет Orchestrator, runs.completed — внешние
//     подписчики (уведомления, интеграции);
//   - conductor.dlq (direct) — dead letter queue для сообщений,
//     которые не удалось обработать.
//
// Соединение автоматически переподключается с экспоненциальным
// backoff; консьюмеры возобновляют чтение после переподключения.
// Подтверждение сообщений ручное: ошибка обработчика приводит к
// Nack с requeue, нечитаемый JSON уходит в DLQ без requeue.
package mq
