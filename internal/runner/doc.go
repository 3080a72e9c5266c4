// Package runner выполняет один вызов treatment от начала до конца.
//
// # Последовательность
//
//  1. Проверка окна времени (from ≤ to)
//  2. Разрешение treatment и загрузка схемы
//  3. Инъекция окна в параметры (__time_range)
//  4. Слияние и проверка параметров
//  5. Проверка входной директории, загрузка точки входа
//  6. Создание выходной директории
//  7. replace / full-replace — очистка прежних результатов
//  8. Окно задано — построение отфильтрованного представления;
//     пустое представление — событие skip, treatment не вызывается
//  9. Вызов treatment, события start и success/error
//  10. Удаление представления на любом пути выхода
//
// Шаги 1–5 не меняют файловую систему: ошибка валидации не оставляет следов.
//
// # Результат
//
// Run возвращает domain.Outcome (success или noop) либо ошибку.
// Сбой treatment оборачивается в *ExecutionError (ErrTreatmentExecution).
package runner
