// Package output применяет политику режима вывода к результатам шага:
// append ничего не трогает, replace удаляет результаты в пределах окна
// (или все), full-replace очищает выходные деревья шагов flow.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/timewindow"
)

// Reconcile готовит выходную директорию шага к запуску и возвращает
// число удалённых файлов. Директории не удаляются.
//
//   - append: ничего не делает
//   - replace с окном: удаляет файлы, дата в имени которых попадает в окно
//   - replace без окна, full-replace: удаляет все файлы рекурсивно
func Reconcile(dir string, mode domain.OutputMode, w domain.TimeWindow) (int, error) {
	switch mode {
	case domain.OutputAppend:
		return 0, nil
	case domain.OutputReplace:
		if w.IsZero() {
			return removeFiles(dir, func(string) bool { return true })
		}
		return removeFiles(dir, func(name string) bool {
			d, ok := timewindow.ExtractDate(name)
			return ok && w.ContainsDate(d)
		})
	case domain.OutputFullReplace:
		return removeFiles(dir, func(string) bool { return true })
	default:
		return 0, fmt.Errorf("unknown output mode %q", mode)
	}
}

// Wipe удаляет все файлы в каждой из директорий (full-replace).
// Отсутствующие директории пропускаются.
func Wipe(dirs []string) (int, error) {
	total := 0
	for _, dir := range dirs {
		n, err := removeFiles(dir, func(string) bool { return true })
		total += n
		if err != nil {
			return total, fmt.Errorf("wipe %s: %w", dir, err)
		}
	}
	return total, nil
}

func removeFiles(dir string, match func(name string) bool) (int, error) {
	removed := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !match(d.Name()) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})

	return removed, err
}
