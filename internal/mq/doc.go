// Package mq публикует события Myx в RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, очереди аудита и binding
//   - publisher.go  — публикация событий журнала и итогов запусков flow
//
// Типы сообщений:
//   - execution.event — переход состояния treatment (start/success/error/skip)
//   - flow.run        — итог запуска flow
//
// Routing keys: event.<status>, run.<STATUS>. Внешние потребители
// привязывают свои очереди к exchange (topic, по умолчанию myx.events).
package mq
