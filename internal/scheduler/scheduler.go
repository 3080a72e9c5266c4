package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/flow"
)

// defaultTickInterval — период проверки расписаний.
const defaultTickInterval = time.Second

// FlowRunner выполняет flow (*flow.Composer).
type FlowRunner interface {
	Run(ctx context.Context, req flow.Request) (domain.Outcome, error)
}

// Scheduler — планировщик, запускающий due schedules.
type Scheduler struct {
	schedules []*domain.Schedule
	runner    FlowRunner
	logger    *slog.Logger
	interval  time.Duration
	now       func() time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	Schedules []domain.Schedule
	Runner    FlowRunner
	Logger    *slog.Logger

	// TickInterval — период тиков (default: 1s).
	TickInterval time.Duration

	// Now — источник времени (default: time.Now).
	Now func() time.Time
}

// New создаёт Scheduler и вычисляет первое время выполнения каждого schedule.
func New(cfg Config) (*Scheduler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Scheduler{
		runner:   cfg.Runner,
		logger:   logger,
		interval: interval,
		now:      now,
	}

	start := now()
	for i := range cfg.Schedules {
		sched := cfg.Schedules[i]
		if err := ValidateCronExpr(sched.CronExpr); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", sched.Name, err)
		}
		if _, err := domain.ParseOutputMode(sched.OutputMode); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", sched.Name, err)
		}
		next, err := NextDue(&sched, start)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", sched.Name, err)
		}
		sched.NextDueAt = &next
		s.schedules = append(s.schedules, &sched)
	}
	return s, nil
}

// Schedules возвращает копии расписаний с вычисленными временами.
func (s *Scheduler) Schedules() []domain.Schedule {
	out := make([]domain.Schedule, len(s.schedules))
	for i, sched := range s.schedules {
		out[i] = *sched
	}
	return out
}

// Run вызывает Tick каждые TickInterval до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "schedules", len(s.schedules))

	tk := time.NewTicker(s.interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-tk.C:
			s.Tick(ctx, s.now())
		}
	}
}

// Tick выполняет один тик планировщика и возвращает число запущенных flows.
//
// 1. Находит due schedules (next_due_at <= now)
// 2. Запускает flow каждого, по очереди
// 3. Обновляет next_due_at
//
// Ошибки одного schedule не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	var ran int
	for _, sched := range s.schedules {
		if ctx.Err() != nil {
			break
		}
		if !sched.IsDue(now) {
			continue
		}
		s.process(ctx, sched, now)
		ran++
	}

	if ran > 0 {
		s.logger.Debug("scheduler tick completed", "ran", ran)
	}
	return ran
}

// process запускает flow одного schedule.
func (s *Scheduler) process(ctx context.Context, sched *domain.Schedule, now time.Time) {
	logger := s.logger.With("schedule", sched.Name, "flow", sched.Flow)

	mode, _ := domain.ParseOutputMode(sched.OutputMode)
	outcome, err := s.runner.Run(ctx, flow.Request{
		Flow: sched.Flow,
		Mode: mode,
		Last: sched.Last,
	})
	switch {
	case err != nil:
		logger.Error("scheduled flow failed", "error", err)
	case outcome.IsNoOp():
		logger.Info("scheduled flow had nothing to do", "reason", outcome.Reason)
	default:
		logger.Info("scheduled flow completed", "steps", outcome.Steps, "duration", outcome.Duration)
	}

	// Время следующего запуска считается от момента тика, пропущенные
	// за время выполнения слоты не догоняются.
	next, err := NextDue(sched, now)
	if err != nil {
		logger.Error("failed to calculate next due", "error", err)
		return
	}
	sched.RecordRun(now, next)
}
