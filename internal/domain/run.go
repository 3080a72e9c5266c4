package domain

import (
	"time"

	"github.com/google/uuid"
)

// FlowRun — экземпляр выполнения flow.
//
// FlowRun создаётся когда:
// - Пользователь запускает flow через CLI (myx flow)
// - Scheduler запускает flow по расписанию
// - Watch запускает инкрементальный прогон после изменений во входной директории
type FlowRun struct {
	// ID — уникальный идентификатор запуска.
	// Попадает в зеркала журнала (Postgres, MQ) и в логи как run_id.
	ID uuid.UUID `json:"id"`

	// Flow — имя flow.
	Flow string `json:"flow"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// Mode — режим вывода, с которым запущен flow.
	Mode OutputMode `json:"output_mode"`

	// Window — эффективное окно времени (после --last или явных границ).
	Window TimeWindow `json:"-"`

	// Steps — имена выбранных шагов в порядке выполнения.
	Steps []string `json:"steps"`

	// StartedAt — время начала выполнения.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения. Nil, если run ещё выполняется.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// FailedStep — имя шага, на котором flow остановился.
	FailedStep string `json:"failed_step,omitempty"`

	// Error — текст ошибки, если run завершился с FAILED.
	Error string `json:"error,omitempty"`
}

// NewFlowRun создаёт run в статусе RUNNING.
func NewFlowRun(flow string, mode OutputMode) *FlowRun {
	return &FlowRun{
		ID:        uuid.New(),
		Flow:      flow,
		Status:    RunStatusRunning,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *FlowRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// IsFinished возвращает true, если run завершён (в любом статусе).
func (r *FlowRun) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkSucceeded переводит run в статус SUCCEEDED.
func (r *FlowRun) MarkSucceeded() {
	r.finish(RunStatusSucceeded)
}

// MarkNoOp переводит run в статус NOOP.
func (r *FlowRun) MarkNoOp() {
	r.finish(RunStatusNoOp)
}

// MarkFailed переводит run в статус FAILED с ошибкой на шаге step.
func (r *FlowRun) MarkFailed(step string, err string) {
	r.finish(RunStatusFailed)
	r.FailedStep = step
	r.Error = err
}

func (r *FlowRun) finish(s RunStatus) {
	now := time.Now().UTC()
	r.Status = s
	r.FinishedAt = &now
}
