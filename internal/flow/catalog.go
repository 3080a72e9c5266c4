package flow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/engine"
)

// flowExt — расширение файлов flow.
const flowExt = ".json"

// FlowsDir возвращает директорию flows.
func (c *Composer) FlowsDir() string {
	return c.flowsDir
}

// DatasetsDir возвращает корень datasets.
func (c *Composer) DatasetsDir() string {
	return c.datasetsDir
}

// Load читает и валидирует <flows_dir>/<name>.json.
func (c *Composer) Load(name string) (*domain.FlowSpec, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	path := filepath.Join(c.flowsDir, name+flowExt)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read flow: %w", err)
	}

	spec, err := engine.ParseFlow(data)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", name, err)
	}
	if spec.Name == "" {
		spec.Name = name
	}
	return spec, nil
}

// Plan загружает flow и разрешает его шаги.
func (c *Composer) Plan(name string) (*Plan, error) {
	spec, err := c.Load(name)
	if err != nil {
		return nil, err
	}
	return NewPlan(spec, c.datasetsDir)
}

// Steps возвращает разрешённые шаги flow.
func (c *Composer) Steps(name string) ([]Step, error) {
	plan, err := c.Plan(name)
	if err != nil {
		return nil, err
	}
	return plan.Steps, nil
}

// ListFlows возвращает имена flows (без расширения), по алфавиту.
// Отсутствующая директория — пустой список.
func (c *Composer) ListFlows() ([]string, error) {
	entries, err := os.ReadDir(c.flowsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != flowExt {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), flowExt))
	}
	sort.Strings(names)
	return names, nil
}

// InitResult — созданные Init пути.
type InitResult struct {
	Flow     string
	RawDir   string
	FlowPath string
}

// Init создаёт <datasets_dir>/<dataset>/00_raw и шаблон flow
// <flows_dir>/<lower(dataset)>.json со стадиями конвейера.
// Существующий flow не перезаписывается (ErrFlowExists).
func (c *Composer) Init(dataset string) (*InitResult, error) {
	if err := checkName(dataset); err != nil {
		return nil, err
	}

	name := strings.ToLower(dataset)
	flowPath := filepath.Join(c.flowsDir, name+flowExt)
	if _, err := os.Stat(flowPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrFlowExists, flowPath)
	}

	rawDir := filepath.Join(c.datasetsDir, dataset, RawStage)
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return nil, fmt.Errorf("create raw dir: %w", err)
	}

	spec := domain.FlowSpec{
		Name:        name,
		Description: "Pipeline for dataset " + dataset,
		Dataset:     dataset,
		Params:      map[string]any{},
	}
	for _, conv := range conventions {
		if !conv.Scaffold {
			continue
		}
		spec.Steps = append(spec.Steps, domain.StepSpec{
			Treatment: conv.Treatment,
			Input:     conv.Input,
			Output:    conv.Output,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(spec); err != nil {
		return nil, fmt.Errorf("encode flow: %w", err)
	}

	if err := os.MkdirAll(c.flowsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create flows dir: %w", err)
	}
	f, err := os.OpenFile(flowPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%w: %s", ErrFlowExists, flowPath)
	}
	if err != nil {
		return nil, fmt.Errorf("create flow: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return nil, fmt.Errorf("write flow: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write flow: %w", err)
	}

	return &InitResult{Flow: name, RawDir: rawDir, FlowPath: flowPath}, nil
}

// StepStatus — заполненность выхода шага.
type StepStatus struct {
	Treatment    string     `json:"treatment"`
	Output       string     `json:"output"`
	Files        int        `json:"files"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	External     bool       `json:"external,omitempty"`
}

// FlowStatus — состояние выходов flow.
type FlowStatus struct {
	Name    string       `json:"name"`
	Dataset string       `json:"dataset,omitempty"`
	Steps   []StepStatus `json:"steps,omitempty"`

	// UpToDate — у каждого не-внешнего шага есть файлы.
	UpToDate bool `json:"up_to_date"`

	// Error — flow не удалось загрузить или разрешить.
	Error string `json:"error,omitempty"`
}

// Status возвращает состояние всех flows.
func (c *Composer) Status() ([]FlowStatus, error) {
	names, err := c.ListFlows()
	if err != nil {
		return nil, err
	}

	out := make([]FlowStatus, 0, len(names))
	for _, name := range names {
		st := FlowStatus{Name: name}

		plan, err := c.Plan(name)
		if err != nil {
			st.Error = err.Error()
			out = append(out, st)
			continue
		}
		st.Name = plan.Flow.Name
		st.Dataset = plan.Flow.Dataset
		st.UpToDate = true

		for _, step := range plan.Steps {
			ss, err := outputStatus(step)
			if err != nil {
				return nil, err
			}
			if ss.Files == 0 && !ss.External {
				st.UpToDate = false
			}
			st.Steps = append(st.Steps, ss)
		}
		out = append(out, st)
	}
	return out, nil
}

func outputStatus(step Step) (StepStatus, error) {
	conv, _ := LookupConvention(step.Treatment)
	ss := StepStatus{Treatment: step.Treatment, Output: step.Output, External: conv.External}

	err := filepath.WalkDir(step.Output, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == step.Output {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		ss.Files++
		if mt := info.ModTime(); ss.LastModified == nil || mt.After(*ss.LastModified) {
			ss.LastModified = &mt
		}
		return nil
	})
	if err != nil {
		return ss, fmt.Errorf("scan %s: %w", step.Output, err)
	}
	return ss, nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
