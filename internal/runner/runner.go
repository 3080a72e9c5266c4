package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/engine"
	"github.com/shaiso/Myx/internal/eventlog"
	"github.com/shaiso/Myx/internal/output"
	"github.com/shaiso/Myx/internal/telemetry"
	"github.com/shaiso/Myx/internal/timewindow"
	"github.com/shaiso/Myx/internal/treatment"
	"github.com/shaiso/Myx/internal/view"
)

// Registry — источник treatments (*treatment.Registry).
type Registry interface {
	Resolve(name string) (treatment.Location, error)
	LoadSchema(loc treatment.Location) (*domain.TreatmentSchema, error)
	Load(loc treatment.Location) (treatment.Func, error)
}

// Request — параметры одного вызова treatment.
type Request struct {
	Treatment string
	Input     string
	Output    string

	// Params — параметры шага (до слияния со схемой).
	Params map[string]any

	// Window — окно времени; пустое — обрабатывать всё.
	Window domain.TimeWindow

	// Mode — режим вывода. full-replace на уровне treatment — replace без окна.
	Mode domain.OutputMode

	// RunID — запуск flow, к которому относится вызов (uuid.Nil — одиночный).
	RunID uuid.UUID
}

// Runner выполняет treatments.
type Runner struct {
	registry Registry
	sink     eventlog.Sink
	tempDir  string
	metrics  *telemetry.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Config — конфигурация Runner.
type Config struct {
	Registry Registry

	// Sink — журнал выполнения. nil — события не пишутся.
	Sink eventlog.Sink

	// TempDir — база для отфильтрованных представлений (пусто — os.TempDir).
	TempDir string

	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// New создаёт новый Runner.
func New(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := cfg.Sink
	if sink == nil {
		sink = eventlog.Discard
	}
	return &Runner{
		registry: cfg.Registry,
		sink:     sink,
		tempDir:  cfg.TempDir,
		metrics:  cfg.Metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Run выполняет treatment.
func (r *Runner) Run(ctx context.Context, req Request) (domain.Outcome, error) {
	mode := req.Mode
	if mode == "" {
		mode = domain.OutputAppend
	}

	logger := telemetry.WithTreatment(r.logger, req.Treatment)
	if req.RunID != uuid.Nil {
		logger = telemetry.WithRunID(logger, req.RunID.String())
	}

	// Validate
	loc, merged, err := r.prepare(req)
	if err != nil {
		return domain.Outcome{}, err
	}
	if err := validateInput(req.Input); err != nil {
		return domain.Outcome{}, err
	}
	run, err := r.registry.Load(loc)
	if err != nil {
		return domain.Outcome{}, err
	}

	// PrepareOutput
	if err := os.MkdirAll(req.Output, 0o755); err != nil {
		return domain.Outcome{}, fmt.Errorf("create output dir: %w", err)
	}

	// Reconcile
	if mode != domain.OutputAppend {
		n, err := output.Reconcile(req.Output, mode, req.Window)
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("reconcile output: %w", err)
		}
		r.metrics.AddDeletedFiles(string(mode), n)
		logger.Debug("reconciled output", "mode", mode, "deleted", n)
	}

	// BuildView
	input := req.Input
	if !req.Window.IsZero() {
		v, err := view.Build(req.Input, req.Window, r.tempDir)
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("build filtered view: %w", err)
		}
		defer func() {
			if err := v.Close(); err != nil {
				logger.Warn("failed to remove filtered view", "dir", v.Dir, "error", err)
			}
		}()

		r.metrics.ObserveView(v.Files)
		if v.Empty() {
			logger.Info("no files in time window, skipping")
			r.metrics.ObserveTreatment(req.Treatment, string(domain.EventSkip), 0)
			if err := r.emit(ctx, req, domain.EventSkip, nil, ""); err != nil {
				return domain.Outcome{}, err
			}
			return domain.NoOp("no files in time window"), nil
		}
		input = v.Dir
	}

	// Invoke
	if err := r.emit(ctx, req, domain.EventStart, nil, ""); err != nil {
		return domain.Outcome{}, err
	}
	logger.Info("treatment started", "input", req.Input, "output", req.Output, "mode", mode)

	start := r.now()
	runErr := run(ctx, input, req.Output, merged)
	elapsed := r.now().Sub(start)

	if runErr != nil {
		r.metrics.ObserveTreatment(req.Treatment, string(domain.EventError), elapsed)
		logger.Error("treatment failed", "duration", elapsed, "error", runErr)

		execErr := &ExecutionError{Treatment: req.Treatment, Duration: elapsed, Err: runErr}
		if err := r.emit(ctx, req, domain.EventError, &elapsed, runErr.Error()); err != nil {
			return domain.Outcome{}, errors.Join(execErr, err)
		}
		return domain.Outcome{}, execErr
	}

	r.metrics.ObserveTreatment(req.Treatment, string(domain.EventSuccess), elapsed)
	logger.Info("treatment completed", "duration", elapsed)

	if err := r.emit(ctx, req, domain.EventSuccess, &elapsed, ""); err != nil {
		return domain.Outcome{}, err
	}
	return domain.Success(elapsed), nil
}

// Check проверяет treatment и параметры запроса, не трогая файловую систему.
//
// Используется composer перед очисткой full-replace, пока входы
// последующих шагов ещё не существуют.
func (r *Runner) Check(req Request) error {
	_, _, err := r.prepare(req)
	return err
}

func (r *Runner) prepare(req Request) (treatment.Location, map[string]any, error) {
	if _, err := domain.ParseOutputMode(string(req.Mode)); err != nil {
		return treatment.Location{}, nil, err
	}
	if err := req.Window.Validate(); err != nil {
		return treatment.Location{}, nil, err
	}

	loc, err := r.registry.Resolve(req.Treatment)
	if err != nil {
		return treatment.Location{}, nil, err
	}
	schema, err := r.registry.LoadSchema(loc)
	if err != nil {
		return treatment.Location{}, nil, err
	}

	params := make(map[string]any, len(req.Params)+1)
	maps.Copy(params, req.Params)
	if !req.Window.IsZero() {
		params[engine.TimeRangeKey] = timewindow.WindowParam(req.Window)
	}

	merged, err := engine.Merge(schema, params)
	if err != nil {
		return treatment.Location{}, nil, fmt.Errorf("treatment %s: %w", req.Treatment, err)
	}
	return loc, merged, nil
}

// RunLast выполняет treatment в инкрементальном режиме (--last).
//
// Окно вычисляется по паре вход/выход; актуальный выход — NoOp.
// Явное окно в req игнорируется.
func (r *Runner) RunLast(ctx context.Context, req Request) (domain.Outcome, timewindow.Resolution, error) {
	res, err := timewindow.ResolveIncrementalRange(req.Input, req.Output)
	if err != nil {
		return domain.Outcome{}, res, fmt.Errorf("resolve --last: %w", err)
	}

	switch res.Kind {
	case timewindow.ResolveUpToDate:
		r.logger.Info("already up-to-date", "treatment", req.Treatment, "output", req.Output)
		return domain.NoOp("already up-to-date"), res, nil
	case timewindow.ResolveDelta:
		req.Window = res.Window
		r.logger.Info("--last resolved",
			"treatment", req.Treatment,
			"from", timewindow.FormatInstant(*res.Window.From),
			"to", timewindow.FormatInstant(*res.Window.To),
		)
	default:
		req.Window = domain.TimeWindow{}
	}

	out, err := r.Run(ctx, req)
	return out, res, err
}

func (r *Runner) emit(ctx context.Context, req Request, status domain.EventStatus, d *time.Duration, errText string) error {
	ev := domain.ExecutionEvent{
		Timestamp: r.now().UTC(),
		RunID:     req.RunID,
		Treatment: req.Treatment,
		Status:    status,
		InputDir:  req.Input,
		OutputDir: req.Output,
		Duration:  d,
		Error:     errText,
		Window:    req.Window,
	}
	if err := r.sink.Write(ctx, ev); err != nil {
		return fmt.Errorf("write %s event: %w", status, err)
	}
	return nil
}

func validateInput(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrInputNotFound, dir)
	}
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}
	return nil
}
