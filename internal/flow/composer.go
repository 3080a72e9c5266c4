package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/output"
	"github.com/shaiso/Myx/internal/runner"
	"github.com/shaiso/Myx/internal/telemetry"
	"github.com/shaiso/Myx/internal/timewindow"
)

// StepRunner выполняет один шаг (*runner.Runner).
type StepRunner interface {
	Check(req runner.Request) error
	Run(ctx context.Context, req runner.Request) (domain.Outcome, error)
}

// RunRecorder сохраняет запуски flow (*repo.RunRepo).
type RunRecorder interface {
	Create(ctx context.Context, run *domain.FlowRun) error
	Update(ctx context.Context, run *domain.FlowRun) error
}

// RunNotifier публикует завершённые запуски (*mq.Publisher).
type RunNotifier interface {
	PublishRun(ctx context.Context, run *domain.FlowRun) error
}

// Composer выполняет flows.
type Composer struct {
	runner      StepRunner
	flowsDir    string
	datasetsDir string

	recorder RunRecorder
	notifier RunNotifier
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// Config — конфигурация Composer.
type Config struct {
	Runner StepRunner

	// FlowsDir — директория <name>.json (default: flows).
	FlowsDir string

	// DatasetsDir — корень datasets (default: datasets).
	DatasetsDir string

	// Recorder и Notifier опциональны; их ошибки не прерывают flow.
	Recorder RunRecorder
	Notifier RunNotifier

	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// Значения по умолчанию.
const (
	DefaultFlowsDir    = "flows"
	DefaultDatasetsDir = "datasets"
)

// New создаёт новый Composer.
func New(cfg Config) *Composer {
	flowsDir := cfg.FlowsDir
	if flowsDir == "" {
		flowsDir = DefaultFlowsDir
	}
	datasetsDir := cfg.DatasetsDir
	if datasetsDir == "" {
		datasetsDir = DefaultDatasetsDir
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		runner:      cfg.Runner,
		flowsDir:    flowsDir,
		datasetsDir: datasetsDir,
		recorder:    cfg.Recorder,
		notifier:    cfg.Notifier,
		metrics:     cfg.Metrics,
		logger:      logger,
	}
}

// Request — параметры запуска flow.
type Request struct {
	Flow string

	// Window — явные границы; каждая задавшая граница важнее границы из flow.
	Window domain.TimeWindow

	Mode domain.OutputMode

	// Last — инкрементальный режим; несовместим с явным окном.
	Last bool

	Selection Selection
}

// Run выполняет flow.
//
// Ошибки валидации (flow, выбор шагов, treatments, параметры) возвращаются
// до любых изменений на диске. Сбой шага возвращается как *StepError.
func (c *Composer) Run(ctx context.Context, req Request) (domain.Outcome, error) {
	mode := req.Mode
	if mode == "" {
		mode = domain.OutputAppend
	}
	if _, err := domain.ParseOutputMode(string(mode)); err != nil {
		return domain.Outcome{}, err
	}

	if req.Last && !req.Window.IsZero() {
		return domain.Outcome{}, ErrLastWithWindow
	}

	plan, err := c.Plan(req.Flow)
	if err != nil {
		return domain.Outcome{}, err
	}

	window := domain.TimeWindow{From: plan.Window.From, To: plan.Window.To}
	if req.Window.From != nil {
		window.From = req.Window.From
	}
	if req.Window.To != nil {
		window.To = req.Window.To
	}
	if err := window.Validate(); err != nil {
		return domain.Outcome{}, err
	}

	steps, err := req.Selection.Apply(plan.Steps)
	if err != nil {
		return domain.Outcome{}, err
	}

	for _, st := range steps {
		if err := c.runner.Check(runner.Request{
			Treatment: st.Treatment,
			Params:    st.Params,
			Window:    window,
		}); err != nil {
			return domain.Outcome{}, fmt.Errorf("step %d (%s): %w", st.Index, st.Treatment, err)
		}
	}

	run := domain.NewFlowRun(req.Flow, mode)
	for _, st := range steps {
		run.Steps = append(run.Steps, st.Treatment)
	}
	logger := telemetry.WithRunID(telemetry.WithFlow(c.logger, req.Flow), run.ID.String())
	c.record(ctx, logger, run, true)

	stepMode := mode
	if mode == domain.OutputFullReplace {
		n, err := output.Wipe(Outputs(steps))
		if err != nil {
			return c.fail(ctx, logger, run, "", err)
		}
		c.metrics.AddDeletedFiles(string(domain.OutputFullReplace), n)
		logger.Info("cleared step outputs", "files", n, "steps", len(steps))
		stepMode = domain.OutputReplace
	}

	if req.Last {
		first := steps[0]
		res, err := timewindow.ResolveIncrementalRange(first.Input, first.Output)
		if err != nil {
			return c.fail(ctx, logger, run, first.Treatment, fmt.Errorf("resolve --last: %w", err))
		}
		switch res.Kind {
		case timewindow.ResolveUpToDate:
			logger.Info("already up-to-date", "step", first.Treatment)
			run.MarkNoOp()
			c.finish(ctx, logger, run)
			return domain.NoOp("already up-to-date"), nil
		case timewindow.ResolveDelta:
			window = res.Window
			logger.Info("--last resolved",
				"from", timewindow.FormatInstant(*window.From),
				"to", timewindow.FormatInstant(*window.To),
			)
		default:
			window = domain.TimeWindow{}
		}
	}
	run.Window = window

	logger.Info("starting flow", "steps", len(steps), "mode", mode)

	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return c.fail(ctx, logger, run, st.Treatment, err)
		}

		logger.Info("running step", "step", st.Treatment, "position", fmt.Sprintf("%d/%d", i+1, len(steps)))

		_, err := c.runner.Run(ctx, runner.Request{
			Treatment: st.Treatment,
			Input:     st.Input,
			Output:    st.Output,
			Params:    st.Params,
			Window:    window,
			Mode:      stepMode,
			RunID:     run.ID,
		})
		if err != nil {
			stepErr := &StepError{Index: i + 1, Total: len(steps), Treatment: st.Treatment, Err: err}
			return c.fail(ctx, logger, run, st.Treatment, stepErr)
		}
	}

	run.MarkSucceeded()
	c.finish(ctx, logger, run)

	outcome := domain.Success(run.Duration())
	outcome.Steps = len(steps)
	outcome.Window = window
	return outcome, nil
}

func (c *Composer) fail(ctx context.Context, logger *slog.Logger, run *domain.FlowRun, step string, err error) (domain.Outcome, error) {
	logger.Error("flow failed", "step", step, "error", err)
	run.MarkFailed(step, err.Error())
	c.finish(ctx, logger, run)
	return domain.Outcome{}, err
}

func (c *Composer) finish(ctx context.Context, logger *slog.Logger, run *domain.FlowRun) {
	c.metrics.ObserveFlow(run.Flow, string(run.Status), run.Duration())
	c.record(ctx, logger, run, false)

	if c.notifier != nil {
		if err := c.notifier.PublishRun(context.WithoutCancel(ctx), run); err != nil {
			c.metrics.IncSinkError("mq")
			logger.Warn("failed to publish flow run", "error", err)
		}
	}

	logger.Info("flow finished",
		"status", run.Status,
		"duration", run.Duration().Round(time.Millisecond),
	)
}

func (c *Composer) record(ctx context.Context, logger *slog.Logger, run *domain.FlowRun, create bool) {
	if c.recorder == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	var err error
	if create {
		err = c.recorder.Create(ctx, run)
	} else {
		err = c.recorder.Update(ctx, run)
	}
	if err != nil {
		c.metrics.IncSinkError("postgres")
		logger.Warn("failed to record flow run", "error", err)
	}
}
