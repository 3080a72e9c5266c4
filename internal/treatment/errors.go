package treatment

import "errors"

var (
	// ErrMissingTreatment — treatment не найден ни локально, ни среди встроенных.
	ErrMissingTreatment = errors.New("treatment not found")

	// ErrConfig — treatment.json отсутствует или некорректен, либо run.go не загружается.
	ErrConfig = errors.New("treatment config error")

	// ErrInvalidParams — значение параметра не подходит treatment
	// (проверяется самим treatment после валидации схемы).
	ErrInvalidParams = errors.New("invalid treatment params")
)
