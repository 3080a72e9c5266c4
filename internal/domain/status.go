package domain

// RunStatus — статус запуска flow.
//
// Жизненный цикл:
//
//	RUNNING → SUCCEEDED
//	        ↘ FAILED
//	        ↘ NOOP (окно пустое или результаты актуальны)
type RunStatus string

const (
	// RunStatusRunning — flow выполняется.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — все выбранные шаги выполнены.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — один из шагов завершился с ошибкой, остальные не запускались.
	RunStatusFailed RunStatus = "FAILED"

	// RunStatusNoOp — выполнять было нечего (--last и результаты актуальны).
	RunStatusNoOp RunStatus = "NOOP"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed, RunStatusNoOp:
		return true
	default:
		return false
	}
}

// EventStatus — статус события журнала выполнения.
//
// Для одного вызова treatment пишется либо skip, либо start
// и ровно одно из success/error.
type EventStatus string

const (
	EventStart   EventStatus = "start"
	EventSuccess EventStatus = "success"
	EventError   EventStatus = "error"
	EventSkip    EventStatus = "skip"
)

// String возвращает строковое представление EventStatus.
func (s EventStatus) String() string {
	return string(s)
}
