// Package agents реализует доменных воркеров платформы:
// recruiting, compliance, deal_management, communication, analytics.
//
// Каждый воркер диспетчеризует по params["task_type"] и возвращает
// Result с выходными данными. Без LLM-клиента воркеры работают в
// mock-режиме на детерминированных текстах — извлечение сигналов
// из текста делает пакет interpret в обоих режимах одинаково.
//
// Воркеры не знают про движок и персистентность: их вызывает engine,
// результаты складываются в состояние запуска.
package agents
