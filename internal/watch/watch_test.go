package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/flow"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRunner struct {
	mu   sync.Mutex
	reqs []flow.Request
}

func (f *fakeRunner) Run(_ context.Context, req flow.Request) (domain.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return domain.Success(0), nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func start(t *testing.T, w *Watcher) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return func() {
		stop()
		require.NoError(t, <-done)
	}
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoDir)
}

func TestWatcher_DebouncedIncrementalRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "00_raw")
	runner := &fakeRunner{}

	w, err := New(Config{Runner: runner, Flow: "daily", Dir: dir, Debounce: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.DirExists(t, dir)

	stop := start(t, w)
	defer stop()

	for i := range 3 {
		name := filepath.Join(dir, fmt.Sprintf("a_2026-01-%02d.csv", 24+i))
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}

	require.Eventually(t, func() bool { return runner.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	// пачка изменений даёт один прогон
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, runner.count())

	runner.mu.Lock()
	req := runner.reqs[0]
	runner.mu.Unlock()
	assert.Equal(t, "daily", req.Flow)
	assert.True(t, req.Last)
}

func TestWatcher_NewSubdirectoryIsWatched(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}

	w, err := New(Config{Runner: runner, Flow: "daily", Dir: dir, Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	stop := start(t, w)
	defer stop()

	sub := filepath.Join(dir, "domain=a")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.Eventually(t, func() bool { return runner.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "b_2026-01-25.parquet"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return runner.count() == 2 }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return w.Runs() == 2 }, 5*time.Second, 10*time.Millisecond)
}
