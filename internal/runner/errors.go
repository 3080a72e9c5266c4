package runner

import (
	"errors"
	"fmt"
	"time"
)

// Ошибки runner.
var (
	// ErrInputNotFound — входная директория не существует.
	ErrInputNotFound = errors.New("input directory not found")

	// ErrNotADirectory — входной путь не является директорией.
	ErrNotADirectory = errors.New("input path is not a directory")

	// ErrTreatmentExecution — treatment завершился ошибкой.
	ErrTreatmentExecution = errors.New("treatment execution failed")
)

// ExecutionError — сбой treatment с контекстом.
type ExecutionError struct {
	Treatment string        // имя treatment
	Duration  time.Duration // время до сбоя
	Err       error         // ошибка treatment
}

// Error реализует интерфейс error.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("treatment %s failed after %s: %v", e.Treatment, e.Duration.Round(time.Millisecond), e.Err)
}

// Unwrap возвращает ошибку treatment.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is сопоставляет ExecutionError с ErrTreatmentExecution.
func (e *ExecutionError) Is(target error) bool {
	return target == ErrTreatmentExecution
}
