package engine

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/shaiso/Myx/internal/domain"
)

// ReservedPrefix — префикс служебных параметров.
// Такие ключи не проверяются по схеме и передаются treatment как есть.
const ReservedPrefix = "__"

// TimeRangeKey — служебный параметр с окном времени запуска:
// {"from": "<iso>"|nil, "to": "<iso>"|nil}.
const TimeRangeKey = ReservedPrefix + "time_range"

// IsReserved проверяет, что ключ служебный.
func IsReserved(key string) bool {
	return strings.HasPrefix(key, ReservedPrefix)
}

// Merge сливает переданные параметры со схемой treatment.
//
// Для каждого объявленного параметра берётся переданное значение,
// иначе default, иначе ErrMissingRequiredParam. Тип проверяется точным
// совпадением вида, без приведения. Необъявленные ключи без служебного
// префикса дают ErrUnknownParams со всеми такими ключами сразу.
//
// Числа json.Number в результате приведены к int64/float64.
func Merge(schema *domain.TreatmentSchema, provided map[string]any) (map[string]any, error) {
	var declared map[string]domain.ParamSpec
	if schema != nil {
		declared = schema.Params
	}

	var unknown []string
	for key := range provided {
		if _, ok := declared[key]; !ok && !IsReserved(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &UnknownParamsError{Keys: unknown}
	}

	names := make([]string, 0, len(declared))
	for name := range declared {
		names = append(names, name)
	}
	sort.Strings(names)

	merged := make(map[string]any, len(provided)+len(declared))
	for _, name := range names {
		spec := declared[name]

		value, ok := provided[name]
		if !ok {
			if spec.Default == nil {
				return nil, &ParamError{Param: name, Expected: spec.Type, Err: ErrMissingRequiredParam}
			}
			value = spec.Default
		}

		kind, known := KindOf(value)
		if !known || kind != spec.Type {
			return nil, &ParamError{Param: name, Expected: spec.Type, Got: describe(value), Err: ErrTypeMismatch}
		}
		merged[name] = Normalize(value)
	}

	for key, value := range provided {
		if IsReserved(key) {
			merged[key] = Normalize(value)
		}
	}

	return merged, nil
}

// KindOf определяет вид значения. false — значение не относится ни к одному виду
// (в том числе nil).
func KindOf(v any) (domain.ParamType, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return domain.ParamStr, true
	case bool:
		return domain.ParamBool, true
	case json.Number:
		if isIntegral(x) {
			return domain.ParamInt, true
		}
		return domain.ParamFloat, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return domain.ParamInt, true
	case reflect.Float32, reflect.Float64:
		return domain.ParamFloat, true
	case reflect.Slice, reflect.Array:
		return domain.ParamList, true
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return domain.ParamDict, true
		}
	}
	return "", false
}

// Normalize рекурсивно приводит json.Number к int64 или float64.
func Normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if isIntegral(x) {
			if i, err := x.Int64(); err == nil {
				return i
			}
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	default:
		return v
	}
}

func isIntegral(n json.Number) bool {
	return !strings.ContainsAny(n.String(), ".eE")
}

func describe(v any) string {
	if kind, ok := KindOf(v); ok {
		return string(kind)
	}
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}
