// Package view строит отфильтрованное по окну времени представление
// входной директории: временную директорию из символических ссылок
// на исходные файлы с сохранением относительной структуры.
package view

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/timewindow"
)

// TempPrefix — префикс временных директорий представлений.
const TempPrefix = "myx_view_"

// DataExts — расширения структурированных файлов данных.
var DataExts = []string{".csv", timewindow.ColumnarExt}

// View — эфемерное представление входной директории.
// Принадлежит создавшему его вызову; Close обязателен на любом пути выхода.
type View struct {
	// Dir — корень представления.
	Dir string

	// Files — число файлов в представлении.
	Files int

	once sync.Once
	err  error
}

// Empty возвращает true, если ни один файл не попал в окно.
func (v *View) Empty() bool {
	return v.Files == 0
}

// Close удаляет директорию представления. Идемпотентен.
// Исходные файлы не затрагиваются: удаляются только ссылки.
func (v *View) Close() error {
	v.once.Do(func() {
		v.err = os.RemoveAll(v.Dir)
	})
	return v.err
}

// ListDataFiles рекурсивно перечисляет файлы данных (.csv, .parquet) в dir.
// Отсутствующая директория считается пустой. Результат отсортирован.
func ListDataFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !isDataFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Build создаёт представление inputDir, ограниченное окном w.
//
// Пустое представление — штатный результат ("нечего делать"), не ошибка.
// tempDir — базовая директория для представления (пусто — os.TempDir).
// При ошибке частично построенное представление удаляется.
func Build(inputDir string, w domain.TimeWindow, tempDir string) (*View, error) {
	root, err := filepath.Abs(inputDir)
	if err != nil {
		return nil, err
	}

	files, err := ListDataFiles(root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", inputDir, err)
	}
	selected := timewindow.FilterByDate(files, w)

	dir, err := os.MkdirTemp(tempDir, TempPrefix)
	if err != nil {
		return nil, fmt.Errorf("create view dir: %w", err)
	}
	v := &View{Dir: dir}

	for _, src := range selected {
		if err := link(root, src, dir); err != nil {
			_ = v.Close()
			return nil, err
		}
		v.Files++
	}

	return v, nil
}

func link(root, src, viewDir string) error {
	rel, err := filepath.Rel(root, src)
	if err != nil {
		return err
	}
	target, err := filepath.EvalSymlinks(src)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", src, err)
	}

	dst := filepath.Join(viewDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Symlink(target, dst); err != nil {
		return fmt.Errorf("link %s: %w", rel, err)
	}
	return nil
}

func isDataFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range DataExts {
		if ext == e {
			return true
		}
	}
	return false
}
