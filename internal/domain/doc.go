// Package domain содержит модель данных Myx.
//
// Основные сущности:
//   - TreatmentSchema / ParamSpec — контракт treatment (treatment.json)
//   - FlowSpec / StepSpec — декларативное описание flow
//   - TimeWindow — окно времени [from, to] в UTC
//   - ExecutionEvent — запись журнала выполнения
//   - OutputMode — политика обработки предыдущих результатов
//   - Outcome — штатный результат запуска (success / noop)
//   - FlowRun, Schedule — запуск flow и расписание
package domain
