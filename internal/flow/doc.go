// Package flow выполняет flow: упорядоченную цепочку treatments над
// директориями одного dataset.
//
// # Обзор
//
// Composer загружает <flows_dir>/<name>.json, строит Plan и прогоняет
// выбранные шаги строго по порядку через runner:
//
//   - Параметры шага = параметры flow (без from/to) + параметры шага
//   - Относительные пути разрешаются от <datasets_dir>/<dataset>;
//     шаг без путей берёт их из реестра соглашений (pipeline.go)
//   - Окно времени: явные границы важнее границ из flow
//   - full-replace очищает выходы выбранных шагов один раз до запуска,
//     затем каждый шаг идёт в режиме replace
//   - --last вычисляет окно по первому выбранному шагу; актуальный
//     выход завершает flow как NoOp
//   - Сбой шага останавливает flow (*StepError с позицией и именем)
//
// # Каталог
//
// Init создаёт dataset и шаблон flow, Status показывает заполненность
// выходов, ListFlows и Steps перечисляют flows и их шаги.
package flow
