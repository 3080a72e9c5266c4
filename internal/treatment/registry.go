package treatment

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/engine"
)

//go:embed builtin/*/treatment.json
var builtinFS embed.FS

// builtin — встроенный treatment: сырой treatment.json и точка входа.
type builtin struct {
	schema []byte
	run    Func
}

// Registry — реестр treatments.
//
// Объединяет встроенные treatments и локальные переопределения
// из LocalDir. Потокобезопасен.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]builtin
	localDir string
	logger   *slog.Logger
}

// Config — конфигурация реестра.
type Config struct {
	// LocalDir — директория локальных treatments (<name>/treatment.json + run.go).
	LocalDir string

	Logger *slog.Logger
}

// NewRegistry создаёт пустой реестр (без встроенных treatments).
func NewRegistry(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		builtins: make(map[string]builtin),
		localDir: cfg.LocalDir,
		logger:   logger,
	}
}

// DefaultRegistry создаёт реестр со всеми встроенными treatments.
func DefaultRegistry(cfg Config) *Registry {
	r := NewRegistry(cfg)

	r.mustRegisterEmbedded("copy", Copy)
	r.mustRegisterEmbedded("upload", NewUploader(nil).Run)

	return r
}

func (r *Registry) mustRegisterEmbedded(name string, run Func) {
	data, err := builtinFS.ReadFile(path.Join("builtin", name, SchemaFile))
	if err != nil {
		panic(fmt.Sprintf("treatment: embedded schema for %s: %v", name, err))
	}
	r.Register(name, data, run)
}

// Register регистрирует встроенный treatment.
// Если treatment с таким именем уже существует, он будет перезаписан.
func (r *Registry) Register(name string, schema []byte, run Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtins[name] = builtin{schema: schema, run: run}
}

// Resolve находит treatment по имени.
// Локальное переопределение имеет приоритет над встроенным.
func (r *Registry) Resolve(name string) (Location, error) {
	if !validName(name) {
		return Location{}, fmt.Errorf("%w: %q", ErrMissingTreatment, name)
	}

	if r.localDir != "" {
		dir := filepath.Join(r.localDir, name)
		if info, err := os.Stat(filepath.Join(dir, SchemaFile)); err == nil && !info.IsDir() {
			abs, err := filepath.Abs(dir)
			if err != nil {
				abs = dir
			}
			return Location{Name: name, Dir: abs}, nil
		}
	}

	r.mu.RLock()
	_, ok := r.builtins[name]
	r.mu.RUnlock()
	if ok {
		return Location{Name: name, Builtin: true}, nil
	}

	return Location{}, fmt.Errorf("%w: %s", ErrMissingTreatment, name)
}

// LoadSchema читает и проверяет treatment.json.
// Схема разбирается заново при каждом вызове.
func (r *Registry) LoadSchema(loc Location) (*domain.TreatmentSchema, error) {
	var (
		data []byte
		err  error
	)

	if loc.Builtin {
		r.mu.RLock()
		b, ok := r.builtins[loc.Name]
		r.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTreatment, loc.Name)
		}
		data = b.schema
	} else {
		data, err = os.ReadFile(filepath.Join(loc.Dir, SchemaFile))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfig, loc, err)
		}
	}

	schema, err := engine.ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfig, loc, err)
	}
	if schema.Name == "" {
		schema.Name = loc.Name
	}
	return schema, nil
}

// Load возвращает точку входа treatment.
func (r *Registry) Load(loc Location) (Func, error) {
	if loc.Builtin {
		r.mu.RLock()
		defer r.mu.RUnlock()
		b, ok := r.builtins[loc.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTreatment, loc.Name)
		}
		return b.run, nil
	}

	r.logger.Debug("interpreting local treatment", "treatment", loc.Name, "dir", loc.Dir)
	return loadLocal(filepath.Join(loc.Dir, SourceFile))
}

// Get разрешает имя, загружает схему и точку входа.
func (r *Registry) Get(name string) (*Treatment, error) {
	loc, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	schema, err := r.LoadSchema(loc)
	if err != nil {
		return nil, err
	}
	run, err := r.Load(loc)
	if err != nil {
		return nil, err
	}
	return &Treatment{Location: loc, Schema: schema, Run: run}, nil
}

// Names возвращает все доступные treatments (встроенные и локальные), по имени.
// Локальный treatment скрывает встроенный с тем же именем.
// Treatments с нечитаемой схемой попадают в список без описания.
func (r *Registry) Names() ([]Entry, error) {
	names := make(map[string]struct{})

	r.mu.RLock()
	for name := range r.builtins {
		names[name] = struct{}{}
	}
	r.mu.RUnlock()

	if r.localDir != "" {
		entries, err := os.ReadDir(r.localDir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read treatments dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				names[e.Name()] = struct{}{}
			}
		}
	}

	result := make([]Entry, 0, len(names))
	for name := range names {
		loc, err := r.Resolve(name)
		if err != nil {
			continue
		}
		entry := Entry{Name: name, Builtin: loc.Builtin, Location: loc.String()}
		if schema, err := r.LoadSchema(loc); err == nil {
			entry.Description = schema.Description
		} else {
			r.logger.Warn("unreadable treatment schema", "treatment", name, "error", err)
		}
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
