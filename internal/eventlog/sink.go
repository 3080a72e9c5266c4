package eventlog

import (
	"context"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/timewindow"
)

// Sink — приёмник событий журнала.
// Write вызывается один раз на каждое событие; события не накапливаются.
type Sink interface {
	Write(ctx context.Context, ev domain.ExecutionEvent) error
}

// SinkFunc адаптирует функцию к Sink.
type SinkFunc func(ctx context.Context, ev domain.ExecutionEvent) error

// Write вызывает f.
func (f SinkFunc) Write(ctx context.Context, ev domain.ExecutionEvent) error {
	return f(ctx, ev)
}

// Discard — приёмник, игнорирующий события.
var Discard Sink = SinkFunc(func(context.Context, domain.ExecutionEvent) error { return nil })

// tsLayout — формат поля ts: секунды, UTC, суффикс Z.
const tsLayout = "2006-01-02T15:04:05Z"

// Record — строка JSONL-журнала.
type Record struct {
	TS         string   `json:"ts"`
	Treatment  string   `json:"treatment"`
	Status     string   `json:"status"`
	InputDir   string   `json:"input_dir"`
	OutputDir  string   `json:"output_dir"`
	DurationMS *float64 `json:"duration_ms,omitempty"`
	Error      *string  `json:"error,omitempty"`
	TimeFrom   *string  `json:"time_from,omitempty"`
	TimeTo     *string  `json:"time_to,omitempty"`
}

// NewRecord строит запись журнала из события.
func NewRecord(ev domain.ExecutionEvent) Record {
	r := Record{
		TS:        ev.Timestamp.UTC().Format(tsLayout),
		Treatment: ev.Treatment,
		Status:    string(ev.Status),
		InputDir:  ev.InputDir,
		OutputDir: ev.OutputDir,
	}
	if ms, ok := ev.DurationMS(); ok {
		r.DurationMS = &ms
	}
	if ev.Status == domain.EventError {
		msg := ev.Error
		r.Error = &msg
	}
	if ev.Window.From != nil {
		s := timewindow.FormatInstant(*ev.Window.From)
		r.TimeFrom = &s
	}
	if ev.Window.To != nil {
		s := timewindow.FormatInstant(*ev.Window.To)
		r.TimeTo = &s
	}
	return r
}
