// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//
// Prometheus-метрики объявляются в cmd/* рядом с /metrics endpoint.
// Все сервисы используют единый формат логирования.
package telemetry
