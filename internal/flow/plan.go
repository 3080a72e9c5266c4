package flow

import (
	"fmt"
	"maps"
	"slices"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/engine"
	"github.com/shaiso/Myx/internal/timewindow"
)

// Step — шаг flow с разрешёнными путями и параметрами.
type Step struct {
	// Index — позиция шага во flow (с 1).
	Index     int
	Treatment string
	Input     string
	Output    string
	Params    map[string]any
}

// Plan — flow, подготовленный к выполнению.
type Plan struct {
	Flow *domain.FlowSpec

	// Window — окно, объявленное во flow (params.from / params.to).
	Window domain.TimeWindow

	Steps []Step
}

// NewPlan разрешает пути и параметры каждого шага.
func NewPlan(spec *domain.FlowSpec, datasetsDir string) (*Plan, error) {
	if err := engine.Validate(spec); err != nil {
		return nil, err
	}

	from, _ := spec.Params[engine.FlowParamFrom].(string)
	to, _ := spec.Params[engine.FlowParamTo].(string)
	window, err := timewindow.ParseWindow(from, to)
	if err != nil {
		return nil, fmt.Errorf("flow %s window: %w", spec.Name, err)
	}

	inherited := make(map[string]any, len(spec.Params))
	for k, v := range spec.Params {
		if k == engine.FlowParamFrom || k == engine.FlowParamTo {
			continue
		}
		inherited[k] = v
	}

	plan := &Plan{Flow: spec, Window: window, Steps: make([]Step, 0, len(spec.Steps))}
	for i, s := range spec.Steps {
		params := maps.Clone(inherited)
		maps.Copy(params, s.Params)

		input, output, err := resolvePaths(spec.Dataset, datasetsDir, s)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, s.Treatment, err)
		}

		plan.Steps = append(plan.Steps, Step{
			Index:     i + 1,
			Treatment: s.Treatment,
			Input:     input,
			Output:    output,
			Params:    params,
		})
	}
	return plan, nil
}

func resolvePaths(dataset, datasetsDir string, s domain.StepSpec) (string, string, error) {
	input, output := s.Input, s.Output

	if dataset == "" {
		if input == "" || output == "" {
			return "", "", ErrMissingPath
		}
		return input, output, nil
	}

	if input == "" || output == "" {
		conv, ok := LookupConvention(s.Treatment)
		if !ok {
			return "", "", fmt.Errorf("%w: %s", ErrUnknownConvention, s.Treatment)
		}
		if input == "" {
			input = conv.Input
		}
		if output == "" {
			output = conv.Output
		}
	}
	return DatasetPath(datasetsDir, dataset, input), DatasetPath(datasetsDir, dataset, output), nil
}

// Selection — выбор шагов flow по имени treatment.
//
// Step выбирает все шаги с этим treatment; FromStep/ToStep — включительный
// диапазон по порядку объявления (берётся первое вхождение имени).
type Selection struct {
	Step     string
	FromStep string
	ToStep   string
}

// IsZero возвращает true, если выбраны все шаги.
func (s Selection) IsZero() bool {
	return s.Step == "" && s.FromStep == "" && s.ToStep == ""
}

// Validate проверяет взаимоисключение Step и диапазона.
func (s Selection) Validate() error {
	if s.Step != "" && (s.FromStep != "" || s.ToStep != "") {
		return ErrSelectionConflict
	}
	return nil
}

// Apply отбирает шаги. Неизвестное имя — ErrStepNotFound.
func (s Selection) Apply(steps []Step) ([]Step, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	names := make([]string, len(steps))
	for i, st := range steps {
		names[i] = st.Treatment
	}
	indexOf := func(name string) (int, error) {
		i := slices.Index(names, name)
		if i < 0 {
			return 0, fmt.Errorf("%w: %q (available: %v)", ErrStepNotFound, name, names)
		}
		return i, nil
	}

	if s.Step != "" {
		if _, err := indexOf(s.Step); err != nil {
			return nil, err
		}
		var out []Step
		for _, st := range steps {
			if st.Treatment == s.Step {
				out = append(out, st)
			}
		}
		return out, nil
	}

	start, end := 0, len(steps)
	if s.FromStep != "" {
		i, err := indexOf(s.FromStep)
		if err != nil {
			return nil, err
		}
		start = i
	}
	if s.ToStep != "" {
		i, err := indexOf(s.ToStep)
		if err != nil {
			return nil, err
		}
		end = i + 1
	}
	if start >= end {
		return nil, fmt.Errorf("%w: %s comes after %s", ErrEmptySelection, s.FromStep, s.ToStep)
	}
	return steps[start:end], nil
}

// Outputs возвращает выходные директории шагов.
func Outputs(steps []Step) []string {
	out := make([]string, 0, len(steps))
	for _, st := range steps {
		out = append(out, st.Output)
	}
	return out
}
