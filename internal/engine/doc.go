// Package engine реализует движок выполнения workflow: конечный
// автомат, который держит разделяемое состояние запуска, делегирует
// выбор следующего шага подключаемому оракулу, переживает отказы
// отдельных воркеров и ограничивает выполнение бюджетом итераций.
//
// Контракты:
//
//   - Oracle решает, какой воркер выполняется следующим; его ответ
//     валидируется против реестра воркеров, невалидный токен
//     детерминированно маппится в завершение.
//   - Воркеры (agents.Agent) возвращают Result; success=false — это
//     данные, а не прерывание: цикл продолжается до решения оракула.
//   - CheckpointStore хранит последнее состояние запуска для resume.
//   - RecordStore — durable-журнал: RunRecord и трейс. Запись
//     best-effort, ошибки персистентности не прерывают запуск.
//
// Движок однопоточен в рамках запуска: в каждый момент активен не
// более чем один воркер на run_id. Конкурентные запуски независимы.
package engine
