package eventlog

import (
	"context"
	"log/slog"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/telemetry"
)

// Mirror — вторичный приёмник с именем для логов и метрик.
type Mirror struct {
	Name string
	Sink Sink
}

// Fanout пишет событие в основной приёмник и во все зеркала.
//
// Ошибка основного приёмника возвращается вызывающему.
// Ошибки зеркал логируются как предупреждения и учитываются в метриках.
type Fanout struct {
	primary Sink
	mirrors []Mirror
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// FanoutConfig — конфигурация Fanout.
type FanoutConfig struct {
	Primary Sink
	Mirrors []Mirror
	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// NewFanout создаёт Fanout. nil Primary — Discard.
func NewFanout(cfg FanoutConfig) *Fanout {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	primary := cfg.Primary
	if primary == nil {
		primary = Discard
	}
	return &Fanout{
		primary: primary,
		mirrors: cfg.Mirrors,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// Write реализует Sink.
func (f *Fanout) Write(ctx context.Context, ev domain.ExecutionEvent) error {
	if err := f.primary.Write(ctx, ev); err != nil {
		return err
	}

	for _, m := range f.mirrors {
		if err := m.Sink.Write(ctx, ev); err != nil {
			f.metrics.IncSinkError(m.Name)
			f.logger.Warn("failed to mirror execution event",
				"sink", m.Name,
				"treatment", ev.Treatment,
				"status", ev.Status,
				"error", err,
			)
		}
	}
	return nil
}
