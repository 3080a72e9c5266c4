package domain

// FlowSpec — декларативное описание flow (содержимое <flows_dir>/<name>.json).
//
// Flow — это упорядоченная цепочка treatments над одним dataset.
// Параметры наследуются иерархически: flow.params → step.params.
type FlowSpec struct {
	// Name — имя flow (совпадает с именем файла без .json).
	Name string `json:"name"`

	// Description — описание назначения flow.
	Description string `json:"description,omitempty"`

	// Dataset — имя dataset; относительные пути шагов разрешаются
	// относительно <datasets_dir>/<dataset>.
	Dataset string `json:"dataset,omitempty"`

	// Params — параметры уровня flow, наследуются всеми шагами.
	// Ключи "from"/"to" задают окно времени и не передаются в treatments.
	Params map[string]any `json:"params,omitempty"`

	// From/To — устаревшая форма окна времени на верхнем уровне.
	// Копируется в Params, если там нет соответствующего ключа.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	// Steps — шаги в порядке выполнения. Минимум один.
	Steps []StepSpec `json:"steps"`
}

// StepSpec — определение шага flow.
type StepSpec struct {
	// Treatment — имя treatment, выполняемого шагом.
	// Также служит именем шага для --step/--from-step/--to-step.
	Treatment string `json:"treatment"`

	// Input — входная директория. Пустая строка — путь по соглашению.
	Input string `json:"input,omitempty"`

	// Output — выходная директория. Пустая строка — путь по соглашению.
	Output string `json:"output,omitempty"`

	// Params — параметры шага; переопределяют параметры flow.
	Params map[string]any `json:"params,omitempty"`
}

// StepNames возвращает имена шагов в объявленном порядке.
func (f *FlowSpec) StepNames() []string {
	names := make([]string, len(f.Steps))
	for i, s := range f.Steps {
		names[i] = s.Treatment
	}
	return names
}
