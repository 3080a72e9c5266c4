package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWindow — начало окна позже конца.
var ErrInvalidWindow = errors.New("time window start is after its end")

// TimeWindow — окно времени [From, To]. Обе границы опциональны и хранятся в UTC.
type TimeWindow struct {
	From *time.Time
	To   *time.Time
}

// NewTimeWindow создаёт окно, приводя границы к UTC.
func NewTimeWindow(from, to *time.Time) TimeWindow {
	var w TimeWindow
	if from != nil {
		f := from.UTC()
		w.From = &f
	}
	if to != nil {
		t := to.UTC()
		w.To = &t
	}
	return w
}

// IsZero возвращает true, если ни одна граница не задана.
func (w TimeWindow) IsZero() bool {
	return w.From == nil && w.To == nil
}

// Validate проверяет, что From ≤ To.
func (w TimeWindow) Validate() error {
	if w.From != nil && w.To != nil && w.From.After(*w.To) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidWindow,
			w.From.Format(time.RFC3339), w.To.Format(time.RFC3339))
	}
	return nil
}

// ContainsDate проверяет, что календарная дата d попадает в
// [From.date(), To.date()] (границы включительно, открытые границы не ограничивают).
func (w TimeWindow) ContainsDate(d time.Time) bool {
	day := truncateDay(d)
	if w.From != nil && day.Before(truncateDay(*w.From)) {
		return false
	}
	if w.To != nil && day.After(truncateDay(*w.To)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
