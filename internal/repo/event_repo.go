package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Myx/internal/domain"
)

// EventRepo — репозиторий зеркала журнала выполнения.
type EventRepo struct {
	pool *pgxpool.Pool
}

// NewEventRepo создаёт новый EventRepo.
func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

// Insert добавляет событие. Только вставка: события не изменяются.
func (r *EventRepo) Insert(ctx context.Context, ev domain.ExecutionEvent) error {
	query := `
		INSERT INTO execution_events
			(run_id, ts, treatment, status, input_dir, output_dir, duration_ms, error, time_from, time_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	var durationMS *float64
	if ms, ok := ev.DurationMS(); ok {
		durationMS = &ms
	}

	_, err := r.pool.Exec(ctx, query,
		nullUUID(&ev.RunID),
		ev.Timestamp.UTC(),
		ev.Treatment,
		string(ev.Status),
		ev.InputDir,
		ev.OutputDir,
		durationMS,
		nullString(ev.Error),
		ev.Window.From,
		ev.Window.To,
	)
	if err != nil {
		return fmt.Errorf("insert execution event: %w", err)
	}
	return nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullUUID возвращает nil для пустого UUID.
func nullUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}
