package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shaiso/Myx/internal/domain"
)

// Ключи окна времени в параметрах flow.
// Они задают окно и не передаются в treatments.
const (
	FlowParamFrom = "from"
	FlowParamTo   = "to"
)

// ParseFlow декодирует и валидирует FlowSpec.
//
// Устаревшие поля from/to верхнего уровня копируются в Params,
// если там нет соответствующего ключа.
func ParseFlow(data []byte) (*domain.FlowSpec, error) {
	var spec domain.FlowSpec
	if err := decode(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFlow, err)
	}

	if spec.Params == nil {
		spec.Params = make(map[string]any)
	}
	if _, ok := spec.Params[FlowParamFrom]; !ok && spec.From != "" {
		spec.Params[FlowParamFrom] = spec.From
	}
	if _, ok := spec.Params[FlowParamTo]; !ok && spec.To != "" {
		spec.Params[FlowParamTo] = spec.To
	}

	if err := Validate(&spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate выполняет валидацию FlowSpec.
//
// Проверяет:
// - Наличие шагов
// - Что каждый шаг указывает treatment
// - Что from/to в параметрах flow — строки
func Validate(spec *domain.FlowSpec) error {
	if spec == nil || len(spec.Steps) == 0 {
		return ErrEmptySteps
	}

	for i, step := range spec.Steps {
		if step.Treatment == "" {
			return NewValidationError(fmt.Sprintf("step %d", i+1), "treatment",
				"step has empty treatment", ErrEmptyTreatment)
		}
	}

	for _, key := range []string{FlowParamFrom, FlowParamTo} {
		v, ok := spec.Params[key]
		if !ok || v == nil {
			continue
		}
		if _, isStr := v.(string); !isStr {
			return NewValidationError("", "params."+key,
				fmt.Sprintf("params.%s must be a string, got %s", key, describe(v)), ErrInvalidWindowParam)
		}
	}

	return nil
}

// ParseSchema декодирует treatment.json и проверяет объявленные типы.
func ParseSchema(data []byte) (*domain.TreatmentSchema, error) {
	var schema domain.TreatmentSchema
	if err := decode(data, &schema); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	names := make([]string, 0, len(schema.Params))
	for name := range schema.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t := schema.Params[name].Type
		if !t.IsValid() {
			return nil, NewValidationError(name, "type",
				fmt.Sprintf("invalid type %q (expected one of %v)", t, domain.ParamTypes()), ErrInvalidParamType)
		}
	}

	return &schema, nil
}

// ParseParams декодирует JSON-объект параметров (--params) с сохранением int/float.
func ParseParams(data []byte) (map[string]any, error) {
	params := make(map[string]any)
	if len(bytes.TrimSpace(data)) == 0 {
		return params, nil
	}
	if err := decode(data, &params); err != nil {
		return nil, fmt.Errorf("params must be a JSON object: %w", err)
	}
	return params, nil
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
