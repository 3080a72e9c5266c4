// Package timewindow разбирает границы окна времени и вычисляет
// инкрементальные окна для режима --last.
//
// Включает:
//   - instant.go  — разбор и форматирование моментов времени (всегда UTC)
//   - filename.go — извлечение даты YYYY-MM-DD из имени файла и фильтрация
//   - columnar.go — поиск максимального timestamp в parquet-файлах
//   - last.go     — последний timestamp директории и инкрементальное окно
package timewindow
