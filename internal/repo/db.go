// Package repo — доступ к Postgres: зеркало журнала выполнения
// (execution_events) и история запусков flow (flow_runs).
package repo

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool создаёт пул соединений. Пустой dsn — из DB_URL.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		dsn = os.Getenv("DB_URL")
	}
	if dsn == "" {
		return nil, ErrNoDSN
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// schema — таблицы зеркала. Создаются при подключении, если отсутствуют.
const schema = `
CREATE TABLE IF NOT EXISTS flow_runs (
	id           uuid PRIMARY KEY,
	flow         text        NOT NULL,
	status       text        NOT NULL,
	output_mode  text        NOT NULL,
	steps        text[]      NOT NULL DEFAULT '{}',
	time_from    timestamptz,
	time_to      timestamptz,
	started_at   timestamptz NOT NULL,
	finished_at  timestamptz,
	failed_step  text,
	error        text
);

CREATE TABLE IF NOT EXISTS execution_events (
	id           bigserial PRIMARY KEY,
	run_id       uuid,
	ts           timestamptz NOT NULL,
	treatment    text        NOT NULL,
	status       text        NOT NULL,
	input_dir    text        NOT NULL,
	output_dir   text        NOT NULL,
	duration_ms  double precision,
	error        text,
	time_from    timestamptz,
	time_to      timestamptz
);

CREATE INDEX IF NOT EXISTS execution_events_run_id_idx ON execution_events (run_id);
`

// EnsureSchema создаёт таблицы зеркала.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
