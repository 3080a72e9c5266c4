package timewindow

import (
	"fmt"
	"strings"
	"time"

	"github.com/shaiso/Myx/internal/domain"
)

// Допустимые форматы. Дробная часть секунд принимается без явного указания в layout.
var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseInstant разбирает момент времени ISO 8601 и приводит его к UTC.
//
// Принимает суффикс Z, явное смещение (+02:00) или время без зоны
// (считается UTC). Дата без времени — полночь UTC.
func ParseInstant(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO 8601 timestamp %q", s)
}

// FormatInstant форматирует момент как 2006-01-02T15:04:05[.ffffff]+00:00.
func FormatInstant(t time.Time) string {
	u := t.UTC()
	if u.Nanosecond()/int(time.Microsecond) != 0 {
		return u.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return u.Format("2006-01-02T15:04:05-07:00")
}

// ParseWindow собирает окно из строковых границ; пустая строка — открытая граница.
func ParseWindow(from, to string) (domain.TimeWindow, error) {
	var w domain.TimeWindow

	if from != "" {
		t, err := ParseInstant(from)
		if err != nil {
			return w, fmt.Errorf("from: %w", err)
		}
		w.From = &t
	}
	if to != "" {
		t, err := ParseInstant(to)
		if err != nil {
			return w, fmt.Errorf("to: %w", err)
		}
		w.To = &t
	}

	if err := w.Validate(); err != nil {
		return w, err
	}
	return w, nil
}

// WindowParam — значение служебного параметра __time_range.
func WindowParam(w domain.TimeWindow) map[string]any {
	return map[string]any{
		"from": formatBound(w.From),
		"to":   formatBound(w.To),
	}
}

func formatBound(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatInstant(*t)
}
