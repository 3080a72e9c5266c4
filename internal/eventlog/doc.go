// Package eventlog записывает журнал выполнения treatments.
//
// Основной приёмник — FileSink: append-only JSONL, одна полная запись
// на строку, пишется сразу при переходе состояния. Зеркала (Postgres,
// RabbitMQ) подключаются через Fanout; их сбои не прерывают выполнение.
//
// Формат записи:
//
//	{"ts": "2026-01-25T10:00:00Z", "treatment": "parse", "status": "success",
//	 "input_dir": "...", "output_dir": "...", "duration_ms": 12.3,
//	 "error": "...", "time_from": "...", "time_to": "..."}
package eventlog
