// Package oracle содержит реализации маршрутизирующего оракула:
// Rule следует плану из каталога workflow, LLM делегирует решение
// reasoning-сервису. Оба возвращают сырой токен — валидирует его
// движок.
package oracle
