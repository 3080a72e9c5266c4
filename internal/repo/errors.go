package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")

	// ErrNoDSN — строка подключения не задана ни в конфигурации, ни в DB_URL.
	ErrNoDSN = errors.New("postgres dsn is not configured")
)
