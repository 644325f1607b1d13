// Package orchestrator реализует демон выполнения workflow-запусков.
//
// Orchestrator слушает очередь runs.requested и параллельно опрашивает
// БД на предмет PENDING запусков (fallback на случай потери событий).
// Каждый запуск атомарно забирается (PENDING → RUNNING одним UPDATE)
// и выполняется через engine.Engine с wall-clock таймаутом; число
// одновременных запусков ограничено семафором. По завершении
// публикуется run.completed.
//
// Отдельный reconcile-цикл переводит в FAILED запуски, которые висят
// в RUNNING дольше порога: так система восстанавливается после
// падения процесса посреди выполнения.
package orchestrator
