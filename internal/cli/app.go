package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Myx/internal/config"
	"github.com/shaiso/Myx/internal/eventlog"
	"github.com/shaiso/Myx/internal/flow"
	"github.com/shaiso/Myx/internal/mq"
	"github.com/shaiso/Myx/internal/repo"
	"github.com/shaiso/Myx/internal/runner"
	"github.com/shaiso/Myx/internal/telemetry"
	"github.com/shaiso/Myx/internal/treatment"
)

// App — собранный движок: реестр, runner, composer и приёмники журнала.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *telemetry.Metrics
	Registry *treatment.Registry
	Runner   *runner.Runner
	Composer *flow.Composer

	pool *pgxpool.Pool
	conn *mq.Connection
}

// NewApp собирает движок по конфигурации.
//
// Журнал выполнения (event_log) обязателен. Зеркала в Postgres и RabbitMQ
// подключаются, если заданы; недоступное зеркало отключается с предупреждением.
func NewApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	logger := telemetry.SetupLogger(telemetry.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logOut,
	})
	metrics := telemetry.NewMetrics()

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Registry: treatment.DefaultRegistry(treatment.Config{
			LocalDir: cfg.TreatmentsDir,
			Logger:   logger,
		}),
	}

	var (
		mirrors  []eventlog.Mirror
		recorder flow.RunRecorder
		notifier flow.RunNotifier
	)

	if cfg.Postgres.DSN != "" {
		if pool, err := app.connectPostgres(ctx); err != nil {
			logger.Warn("postgres mirror disabled", "error", err)
		} else {
			app.pool = pool
			mirrors = append(mirrors, eventlog.PostgresSink(repo.NewEventRepo(pool)))
			recorder = repo.NewRunRepo(pool)
		}
	}

	if cfg.RabbitMQ.URL != "" {
		if pub, err := app.connectRabbitMQ(ctx); err != nil {
			logger.Warn("rabbitmq publisher disabled", "error", err)
		} else {
			mirrors = append(mirrors, eventlog.MQSink(pub))
			notifier = pub
		}
	}

	sink := eventlog.NewFanout(eventlog.FanoutConfig{
		Primary: eventlog.NewFileSink(cfg.EventLog),
		Mirrors: mirrors,
		Metrics: metrics,
		Logger:  logger,
	})

	app.Runner = runner.New(runner.Config{
		Registry: app.Registry,
		Sink:     sink,
		TempDir:  cfg.TempDir,
		Metrics:  metrics,
		Logger:   logger,
	})
	app.Composer = flow.New(flow.Config{
		Runner:      app.Runner,
		FlowsDir:    cfg.FlowsDir,
		DatasetsDir: cfg.DatasetsDir,
		Recorder:    recorder,
		Notifier:    notifier,
		Metrics:     metrics,
		Logger:      logger,
	})
	return app, nil
}

func (a *App) connectPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := repo.NewPool(ctx, a.Config.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	if err := repo.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	a.Logger.Debug("postgres mirror enabled")
	return pool, nil
}

func (a *App) connectRabbitMQ(ctx context.Context) (*mq.Publisher, error) {
	conn, err := mq.NewConnection(a.Config.RabbitMQ.URL, a.Logger)
	if err != nil {
		return nil, err
	}

	exchange := mq.Exchange(a.Config.RabbitMQ.Exchange)
	if err := mq.SetupTopology(ctx, conn, exchange); err != nil {
		conn.Close()
		return nil, err
	}
	conn.OnReconnect(func(ctx context.Context) error {
		return mq.SetupTopology(ctx, conn, exchange)
	})

	a.conn = conn
	a.Logger.Debug("rabbitmq publisher enabled", "topology", mq.TopologyInfo(exchange))
	return mq.NewPublisher(conn, exchange, a.Logger), nil
}

// PushMetrics отправляет метрики в Pushgateway, если он настроен.
func (a *App) PushMetrics(ctx context.Context) {
	url := a.Config.Metrics.Pushgateway
	if url == "" {
		return
	}
	if err := a.Metrics.Push(ctx, url, a.Config.Metrics.Job); err != nil {
		a.Logger.Warn("failed to push metrics", "url", url, "error", err)
	}
}

// Close закрывает подключения к зеркалам.
func (a *App) Close() error {
	var errs []error
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}
