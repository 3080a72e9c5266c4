package flow

import (
	"errors"
	"fmt"
)

// Ошибки flow.
var (
	// ErrFlowNotFound — файл flow не найден.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrStepNotFound — шаг с таким treatment отсутствует во flow.
	ErrStepNotFound = errors.New("step not found in flow")

	// ErrUnknownConvention — для treatment нет путей по соглашению.
	ErrUnknownConvention = errors.New("treatment has no conventional paths")

	// ErrMissingPath — у шага нет пути, а у flow нет dataset.
	ErrMissingPath = errors.New("step has no input/output path and flow has no dataset")

	// ErrSelectionConflict — --step задан вместе с --from-step/--to-step.
	ErrSelectionConflict = errors.New("--step is mutually exclusive with --from-step/--to-step")

	// ErrLastWithWindow — --last задан вместе с явными границами окна.
	ErrLastWithWindow = errors.New("--last is mutually exclusive with --from/--to")

	// ErrEmptySelection — выбранный диапазон шагов пуст.
	ErrEmptySelection = errors.New("step selection is empty")

	// ErrFlowExists — flow для dataset уже существует.
	ErrFlowExists = errors.New("flow already exists")

	// ErrInvalidName — имя flow или dataset содержит разделители пути.
	ErrInvalidName = errors.New("invalid name")
)

// StepError — сбой шага flow.
type StepError struct {
	Index     int    // позиция шага среди выбранных (с 1)
	Total     int    // число выбранных шагов
	Treatment string // имя treatment
	Err       error  // ошибка runner
}

// Error реализует интерфейс error.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %d/%d (%s): %v", e.Index, e.Total, e.Treatment, e.Err)
}

// Unwrap возвращает ошибку шага.
func (e *StepError) Unwrap() error {
	return e.Err
}
