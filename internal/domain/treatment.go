package domain

// ParamType — тип параметра treatment.
type ParamType string

// Допустимые типы параметров.
const (
	ParamStr   ParamType = "str"
	ParamInt   ParamType = "int"
	ParamFloat ParamType = "float"
	ParamBool  ParamType = "bool"
	ParamList  ParamType = "list"
	ParamDict  ParamType = "dict"
)

// IsValid возвращает true для одного из шести допустимых типов.
func (t ParamType) IsValid() bool {
	switch t {
	case ParamStr, ParamInt, ParamFloat, ParamBool, ParamList, ParamDict:
		return true
	default:
		return false
	}
}

// ParamTypes возвращает допустимые типы в фиксированном порядке.
func ParamTypes() []ParamType {
	return []ParamType{ParamStr, ParamInt, ParamFloat, ParamBool, ParamList, ParamDict}
}

// ParamSpec — объявление параметра в treatment.json.
type ParamSpec struct {
	// Type — тип значения, проверяется точным совпадением.
	Type ParamType `json:"type"`

	// Default — значение по умолчанию.
	// nil означает обязательный параметр.
	Default any `json:"default,omitempty"`

	// Description — описание параметра.
	Description string `json:"description,omitempty"`
}

// TreatmentSchema — дескриптор treatment (содержимое treatment.json).
//
// Загружается заново при каждом запуске и после загрузки не изменяется.
type TreatmentSchema struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Params      map[string]ParamSpec `json:"params,omitempty"`
}
