// Package treatment содержит реестр treatments и встроенные реализации.
//
// # Обзор
//
// Treatment — именованный шаг обработки данных. Каждый treatment:
//   - Объявляет схему параметров (treatment.json)
//   - Предоставляет точку входа Func(ctx, inputDir, outputDir, params)
//
// # Разрешение имени
//
// Registry.Resolve ищет treatment в порядке:
//  1. <treatments_dir>/<name>/treatment.json — локальное переопределение
//  2. встроенный treatment
//
// Если ни один не найден — ErrMissingTreatment.
//
// # Локальные treatments
//
// Локальный treatment — директория с treatment.json и run.go:
//
//	package main
//
//	func Run(inputDir, outputDir string, params map[string]any) error {
//	    ...
//	}
//
// run.go интерпретируется через yaegi с символами стандартной библиотеки,
// поэтому сборка бинарника для нового treatment не нужна.
//
// # Встроенные treatments
//
//   - copy   — копирует дерево файлов (copy.go)
//   - upload — выгружает дерево в S3-совместимое хранилище (upload.go)
//
// Схемы встроенных treatments встроены в бинарник (builtin/<name>/treatment.json)
// и разбираются заново при каждом LoadSchema.
package treatment
