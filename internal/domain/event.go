package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionEvent — запись журнала выполнения.
//
// Создаётся один раз на каждый переход состояния и сразу же пишется в журнал;
// никогда не изменяется и не накапливается в батчи.
type ExecutionEvent struct {
	// Timestamp — момент перехода (UTC).
	Timestamp time.Time

	// RunID — идентификатор запуска flow (uuid.Nil для одиночного treatment).
	// В JSONL-журнал не пишется, используется зеркалами (Postgres, MQ).
	RunID uuid.UUID

	Treatment string
	Status    EventStatus
	InputDir  string
	OutputDir string

	// Duration — длительность выполнения; задаётся для success и error.
	Duration *time.Duration

	// Error — текст ошибки treatment (только для error).
	Error string

	// Window — окно времени запуска, если было задано.
	Window TimeWindow
}

// DurationMS возвращает длительность в миллисекундах, округлённую до 0.1.
func (e ExecutionEvent) DurationMS() (float64, bool) {
	if e.Duration == nil {
		return 0, false
	}
	ms := float64(*e.Duration) / float64(time.Millisecond)
	return float64(int64(ms*10+0.5)) / 10, true
}
