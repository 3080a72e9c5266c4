package timewindow

import (
	"path/filepath"
	"regexp"
	"time"

	"github.com/shaiso/Myx/internal/domain"
)

var dateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// ExtractDate возвращает первую корректную календарную дату YYYY-MM-DD
// из имени файла (полночь UTC).
func ExtractDate(name string) (time.Time, bool) {
	for _, m := range dateRe.FindAllString(name, -1) {
		if d, err := time.Parse(time.DateOnly, m); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// FilterByDate оставляет файлы, дата в имени которых попадает в
// [w.From.date(), w.To.date()]. Файлы без даты отбрасываются всегда,
// даже для неограниченного окна.
func FilterByDate(files []string, w domain.TimeWindow) []string {
	result := make([]string, 0, len(files))
	for _, f := range files {
		d, ok := ExtractDate(filepath.Base(f))
		if !ok {
			continue
		}
		if w.ContainsDate(d) {
			result = append(result, f)
		}
	}
	return result
}
