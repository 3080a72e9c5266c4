package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/telemetry"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		out = append(out, m)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestNewRecord(t *testing.T) {
	d := 1234567 * time.Microsecond
	from := time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC)

	r := NewRecord(domain.ExecutionEvent{
		Timestamp: time.Date(2026, 1, 25, 10, 11, 12, 999, time.UTC),
		Treatment: "parse",
		Status:    domain.EventError,
		InputDir:  "in",
		OutputDir: "out",
		Duration:  &d,
		Error:     "boom",
		Window:    domain.TimeWindow{From: &from},
	})

	assert.Equal(t, "2026-01-25T10:11:12Z", r.TS)
	require.NotNil(t, r.DurationMS)
	assert.Equal(t, 1234.6, *r.DurationMS)
	require.NotNil(t, r.Error)
	assert.Equal(t, "boom", *r.Error)
	require.NotNil(t, r.TimeFrom)
	assert.Equal(t, "2026-01-25T00:00:00+00:00", *r.TimeFrom)
	assert.Nil(t, r.TimeTo)
}

func TestFileSink_AppendsCompleteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "myx.log")
	sink := NewFileSink(path)
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, domain.ExecutionEvent{Timestamp: time.Now(), Treatment: "a", Status: domain.EventStart}))
	require.NoError(t, sink.Write(ctx, domain.ExecutionEvent{Timestamp: time.Now(), Treatment: "a", Status: domain.EventSkip}))

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "start", lines[0]["status"])
	assert.Equal(t, "skip", lines[1]["status"])
	assert.NotContains(t, lines[0], "duration_ms")
	assert.NotContains(t, lines[0], "error")
	assert.NotContains(t, lines[0], "time_from")
}

func TestFileSink_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "myx.log")
	sink := NewFileSink(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, sink.Write(context.Background(), domain.ExecutionEvent{Treatment: "x", Status: domain.EventStart}))
		}()
	}
	wg.Wait()

	assert.Len(t, readLines(t, path), 20)
}

func TestFanout(t *testing.T) {
	var primary, mirror []domain.ExecutionEvent
	metrics := telemetry.NewMetrics()

	f := NewFanout(FanoutConfig{
		Primary: SinkFunc(func(_ context.Context, ev domain.ExecutionEvent) error {
			primary = append(primary, ev)
			return nil
		}),
		Mirrors: []Mirror{
			{Name: "ok", Sink: SinkFunc(func(_ context.Context, ev domain.ExecutionEvent) error {
				mirror = append(mirror, ev)
				return nil
			})},
			{Name: "broken", Sink: SinkFunc(func(context.Context, domain.ExecutionEvent) error {
				return errors.New("down")
			})},
		},
		Metrics: metrics,
	})

	require.NoError(t, f.Write(context.Background(), domain.ExecutionEvent{Treatment: "a"}))
	assert.Len(t, primary, 1)
	assert.Len(t, mirror, 1)

	count, err := testutil.GatherAndCount(metrics.Registry, "myx_eventlog_mirror_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFanout_PrimaryFailure(t *testing.T) {
	called := false
	f := NewFanout(FanoutConfig{
		Primary: SinkFunc(func(context.Context, domain.ExecutionEvent) error { return errors.New("disk full") }),
		Mirrors: []Mirror{{Name: "m", Sink: SinkFunc(func(context.Context, domain.ExecutionEvent) error {
			called = true
			return nil
		})}},
	})

	assert.EqualError(t, f.Write(context.Background(), domain.ExecutionEvent{}), "disk full")
	assert.False(t, called)
}

type fakeInserter struct{ n int }

func (f *fakeInserter) Insert(context.Context, domain.ExecutionEvent) error {
	f.n++
	return nil
}

func TestPostgresSink(t *testing.T) {
	ins := &fakeInserter{}
	m := PostgresSink(ins)

	require.NoError(t, m.Sink.Write(context.Background(), domain.ExecutionEvent{}))
	assert.Equal(t, "postgres", m.Name)
	assert.Equal(t, 1, ins.n)
}
