// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (репозитории, publisher, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - workflow_handler.go — обработчики для /workflows (каталог)
//   - run_handler.go      — обработчики для /runs
//   - schedule_handler.go — обработчики для /schedules
//
// API предоставляет REST endpoints для запуска workflow, чтения
// результатов и трейсов, и управления расписаниями. Создание run
// асинхронное: API кладёт PENDING запись и публикует run.requested,
// выполнение — за оркестратором.
package api
