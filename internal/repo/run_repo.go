package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Myx/internal/domain"
)

// RunRepo — репозиторий запусков flow.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Create записывает начатый run.
func (r *RunRepo) Create(ctx context.Context, run *domain.FlowRun) error {
	query := `
		INSERT INTO flow_runs (id, flow, status, output_mode, steps, time_from, time_to, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	steps := run.Steps
	if steps == nil {
		steps = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Flow,
		string(run.Status),
		string(run.Mode),
		steps,
		run.Window.From,
		run.Window.To,
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert flow run: %w", err)
	}
	return nil
}

// Update записывает итог run: статус, окно (после --last), время завершения, ошибку.
func (r *RunRepo) Update(ctx context.Context, run *domain.FlowRun) error {
	query := `
		UPDATE flow_runs
		SET status = $2, time_from = $3, time_to = $4, finished_at = $5, failed_step = $6, error = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		run.ID,
		string(run.Status),
		run.Window.From,
		run.Window.To,
		run.FinishedAt,
		nullString(run.FailedStep),
		nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("update flow run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает run по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FlowRun, error) {
	query := `
		SELECT id, flow, status, output_mode, steps, time_from, time_to,
		       started_at, finished_at, failed_step, error
		FROM flow_runs
		WHERE id = $1
	`
	var (
		run        domain.FlowRun
		status     string
		mode       string
		failedStep *string
		runError   *string
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.Flow,
		&status,
		&mode,
		&run.Steps,
		&run.Window.From,
		&run.Window.To,
		&run.StartedAt,
		&run.FinishedAt,
		&failedStep,
		&runError,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan flow run: %w", err)
	}

	run.Status = domain.RunStatus(status)
	run.Mode = domain.OutputMode(mode)
	if failedStep != nil {
		run.FailedStep = *failedStep
	}
	if runError != nil {
		run.Error = *runError
	}
	return &run, nil
}
