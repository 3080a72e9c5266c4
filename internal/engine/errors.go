package engine

import (
	"errors"
	"strings"

	"github.com/shaiso/Myx/internal/domain"
)

// Ошибки валидации FlowSpec.
var (
	// ErrEmptySteps — flow не содержит шагов.
	ErrEmptySteps = errors.New("flow spec has no steps")

	// ErrEmptyTreatment — шаг не указывает treatment.
	ErrEmptyTreatment = errors.New("step has empty treatment")

	// ErrInvalidFlow — документ flow не является корректным JSON-объектом.
	ErrInvalidFlow = errors.New("invalid flow document")

	// ErrInvalidWindowParam — from/to в параметрах flow не строка.
	ErrInvalidWindowParam = errors.New("flow time bound must be a string")
)

// Ошибки схемы treatment.
var (
	// ErrInvalidSchema — treatment.json не является корректным JSON-объектом.
	ErrInvalidSchema = errors.New("invalid treatment schema")

	// ErrInvalidParamType — тип параметра вне шести допустимых.
	ErrInvalidParamType = errors.New("invalid parameter type")
)

// Ошибки слияния параметров.
var (
	// ErrMissingRequiredParam — обязательный параметр не передан и не имеет default.
	ErrMissingRequiredParam = errors.New("missing required parameter")

	// ErrTypeMismatch — тип значения не совпадает с объявленным.
	ErrTypeMismatch = errors.New("parameter type mismatch")

	// ErrUnknownParams — переданы параметры, не объявленные в схеме.
	ErrUnknownParams = errors.New("unknown parameters")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	Step    string // шаг (или параметр схемы), где произошла ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Step != "" {
		return e.Step + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(step, field, message string, err error) *ValidationError {
	return &ValidationError{
		Step:    step,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// ParamError — ошибка конкретного параметра (отсутствует или неверного типа).
type ParamError struct {
	Param    string
	Expected domain.ParamType
	Got      string // фактический вид значения; пусто для отсутствующего параметра
	Err      error
}

// Error реализует интерфейс error.
func (e *ParamError) Error() string {
	if errors.Is(e.Err, ErrMissingRequiredParam) {
		return "missing required parameter: " + e.Param
	}
	return "parameter " + e.Param + ": expected " + string(e.Expected) + ", got " + e.Got
}

// Unwrap возвращает базовую ошибку.
func (e *ParamError) Unwrap() error {
	return e.Err
}

// UnknownParamsError перечисляет все необъявленные ключи сразу.
type UnknownParamsError struct {
	Keys []string // отсортированы
}

// Error реализует интерфейс error.
func (e *UnknownParamsError) Error() string {
	return "unknown parameters: " + strings.Join(e.Keys, ", ")
}

// Unwrap возвращает ErrUnknownParams.
func (e *UnknownParamsError) Unwrap() error {
	return ErrUnknownParams
}
