package treatment

import (
	"context"

	"github.com/shaiso/Myx/internal/domain"
)

// Файлы treatment.
const (
	SchemaFile = "treatment.json"
	SourceFile = "run.go"
)

// Func — точка входа treatment.
//
// Получает директорию входа (возможно, отфильтрованное представление),
// директорию выхода и уже проверенные параметры.
// Ошибка означает сбой обработки.
type Func func(ctx context.Context, inputDir, outputDir string, params map[string]any) error

// Location — место, где найден treatment.
type Location struct {
	// Name — имя treatment.
	Name string

	// Dir — директория локального treatment (пусто для встроенных).
	Dir string

	// Builtin — встроенный treatment.
	Builtin bool
}

// String возвращает путь локального treatment или "builtin:<name>".
func (l Location) String() string {
	if l.Builtin {
		return "builtin:" + l.Name
	}
	return l.Dir
}

// Treatment — загруженный treatment: схема и точка входа.
type Treatment struct {
	Location Location
	Schema   *domain.TreatmentSchema
	Run      Func
}

// Entry — элемент списка treatments.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Builtin     bool   `json:"builtin"`
	Location    string `json:"location"`
}
