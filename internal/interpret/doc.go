// Package interpret извлекает структурированные сигналы
// из свободного текста ответов воркеров.
//
// Все функции детерминированы и не имеют побочных эффектов:
// оценки (явные числа, затем keyword-шкала), списки проблем,
// рекомендации и action items с фиксированными лимитами.
//
// Пакет не зависит от движка и заменяем целиком — воркеры
// потребляют его, оркестрация о нём не знает.
package interpret
