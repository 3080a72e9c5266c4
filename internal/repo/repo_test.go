package repo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Myx/internal/domain"
)

func TestNewPool_NoDSN(t *testing.T) {
	t.Setenv("DB_URL", "")

	_, err := NewPool(context.Background(), "")
	if !errors.Is(err, ErrNoDSN) {
		t.Errorf("expected ErrNoDSN, got %v", err)
	}
}

func TestNullHelpers(t *testing.T) {
	if nullString("") != nil {
		t.Error("empty string must map to NULL")
	}
	if s := nullString("x"); s == nil || *s != "x" {
		t.Error("non-empty string must be kept")
	}
	if nullUUID(&uuid.Nil) != nil {
		t.Error("nil UUID must map to NULL")
	}
	id := uuid.New()
	if got := nullUUID(&id); got == nil || *got != id {
		t.Error("UUID must be kept")
	}
}

// TestRepos_Postgres выполняется только при заданном MYX_TEST_DB_URL.
func TestRepos_Postgres(t *testing.T) {
	dsn := os.Getenv("MYX_TEST_DB_URL")
	if dsn == "" {
		t.Skip("MYX_TEST_DB_URL is not set")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("schema: %v", err)
	}

	runs := NewRunRepo(pool)
	run := domain.NewFlowRun("demo", domain.OutputReplace)
	run.Steps = []string{"parse", "clean"}
	if err := runs.Create(ctx, run); err != nil {
		t.Fatalf("create run: %v", err)
	}

	d := 1500 * time.Millisecond
	ev := domain.ExecutionEvent{
		Timestamp: time.Now().UTC(),
		RunID:     run.ID,
		Treatment: "parse",
		Status:    domain.EventSuccess,
		InputDir:  "/in",
		OutputDir: "/out",
		Duration:  &d,
	}
	if err := NewEventRepo(pool).Insert(ctx, ev); err != nil {
		t.Fatalf("insert event: %v", err)
	}

	run.MarkFailed("clean", "boom")
	if err := runs.Update(ctx, run); err != nil {
		t.Fatalf("update run: %v", err)
	}

	got, err := runs.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Status != domain.RunStatusFailed || got.FailedStep != "clean" || len(got.Steps) != 2 {
		t.Errorf("unexpected run: %+v", got)
	}

	if _, err := runs.GetByID(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
