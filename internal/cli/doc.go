// Package cli реализует инструмент командной строки Conductor.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Conductor API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для запуска workflow, просмотра runs и trace,
// и управления schedules.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Conductor API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	workflows, err := client.ListWorkflows()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: conductor run list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - workflow: list, show
//   - run: list, start, show, trace
//   - schedule: list, create, show, update, delete, enable, disable
//
// Каждая группа создаётся через фабричную функцию (NewRunCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
