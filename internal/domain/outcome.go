package domain

import "time"

// OutcomeKind — вид результата запуска treatment или flow.
//
// Неуспех представлен ошибкой (error); Outcome описывает только
// штатные исходы, чтобы "нечего делать" не шло по каналу ошибок.
type OutcomeKind string

const (
	// OutcomeSuccess — treatment (или все шаги flow) выполнен.
	OutcomeSuccess OutcomeKind = "success"

	// OutcomeNoOp — выполнять нечего: окно не содержит файлов
	// или результаты уже актуальны.
	OutcomeNoOp OutcomeKind = "noop"
)

// Outcome — результат запуска.
type Outcome struct {
	Kind OutcomeKind

	// Reason — пояснение для NoOp.
	Reason string

	// Duration — время выполнения treatment или всего flow.
	Duration time.Duration

	// Steps — число выполненных шагов (для flow).
	Steps int

	// Window — эффективное окно flow (явное, из flow или после --last).
	Window TimeWindow
}

// Success создаёт успешный Outcome.
func Success(d time.Duration) Outcome {
	return Outcome{Kind: OutcomeSuccess, Duration: d}
}

// NoOp создаёт Outcome "нечего делать".
func NoOp(reason string) Outcome {
	return Outcome{Kind: OutcomeNoOp, Reason: reason}
}

// IsNoOp возвращает true для OutcomeNoOp.
func (o Outcome) IsNoOp() bool {
	return o.Kind == OutcomeNoOp
}
