// Package llm — клиент reasoning-сервиса (chat completions).
//
// Движок не знает про LLM: клиент потребляют воркеры (генерация
// текстов) и LLM-оракул (маршрутизация). Если LLM_BASE_URL не задан,
// система работает в mock-режиме на детерминированных ответах.
package llm
