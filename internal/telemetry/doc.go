// Package telemetry обеспечивает наблюдаемость Myx.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// Журнал выполнения (eventlog) — отдельный аудит; логи slog предназначены
// оператору. Метрики отдаются на /metrics демонами (schedule, watch)
// и отправляются в Pushgateway после разовых запусков CLI.
package telemetry
