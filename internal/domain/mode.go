package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownOutputMode — неизвестный режим вывода.
var ErrUnknownOutputMode = errors.New("unknown output mode")

// OutputMode — политика обработки предыдущих результатов шага.
type OutputMode string

const (
	// OutputAppend — ничего не удалять; treatment сам решает, как дописывать.
	OutputAppend OutputMode = "append"

	// OutputReplace — удалить результаты в пределах окна (или все, если окна нет).
	OutputReplace OutputMode = "replace"

	// OutputFullReplace — очистить выходные директории всех шагов flow
	// до старта, затем выполнять шаги в режиме replace.
	OutputFullReplace OutputMode = "full-replace"
)

// ParseOutputMode парсит строку в OutputMode. Пустая строка — append.
func ParseOutputMode(s string) (OutputMode, error) {
	switch OutputMode(s) {
	case "", OutputAppend:
		return OutputAppend, nil
	case OutputReplace:
		return OutputReplace, nil
	case OutputFullReplace:
		return OutputFullReplace, nil
	default:
		return "", fmt.Errorf("%w %q (expected append, replace or full-replace)", ErrUnknownOutputMode, s)
	}
}

// String возвращает строковое представление OutputMode.
func (m OutputMode) String() string {
	return string(m)
}
