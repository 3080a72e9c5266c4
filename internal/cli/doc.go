// Package cli реализует инструмент командной строки myx.
//
// # Обзор
//
// CLI собирает движок в процессе (App): реестр treatments, runner,
// composer и журнал выполнения с зеркалами в Postgres и RabbitMQ.
// App создаётся лениво, после разбора PersistentFlags (--config, --json).
//
// # Команды
//
//   - flow NAME: запуск flow (окно, --last, выбор шагов, режим вывода)
//   - run TREATMENT: запуск одного treatment
//   - list flows|treatments|steps: обзор
//   - init DATASET: raw директория и шаблон flow
//   - status: заполненность выходов шагов
//   - schedule: демон расписаний из конфигурации; schedule list
//   - watch FLOW: инкрементальный запуск при изменении входа
//
// Каждая команда создаётся фабричной функцией (NewFlowCmd и т.д.),
// принимающей appFn и outputFn.
//
// ## Output
//
// Данные выводятся в stdout таблицей (text/tabwriter) или JSON (--json),
// сообщения (Success/Info) и логи — в stderr:
//
//	myx list flows --json | jq .
package cli
