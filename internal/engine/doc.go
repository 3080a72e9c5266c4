// Package engine содержит правила валидации Myx.
//
// Включает:
//   - parser.go — парсинг и валидация FlowSpec и TreatmentSchema из JSON
//   - params.go — слияние параметров со схемой treatment и проверка типов
//
// JSON декодируется с UseNumber, поэтому int и float различаются
// точно так же, как в исходном документе.
package engine
