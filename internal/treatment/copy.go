package treatment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Copy — встроенный treatment copy.
//
// Копирует каждый файл входного дерева, имя которого подходит под pattern,
// в выходное дерево с сохранением относительных путей.
// Символические ссылки (файлы отфильтрованного представления) разыменовываются.
//
// Параметры:
//
//	{"pattern": "*", "overwrite": true}
func Copy(ctx context.Context, inputDir, outputDir string, params map[string]any) error {
	pattern := stringParam(params, "pattern", "*")
	overwrite := boolParam(params, "overwrite", true)

	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("%w: pattern %q: %w", ErrInvalidParams, pattern, err)
	}

	return filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); !ok {
			return nil
		}

		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(outputDir, rel)

		if !overwrite {
			if _, err := os.Stat(dst); err == nil {
				return nil
			}
		}
		return copyFile(path, dst)
	})
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}

func stringParam(params map[string]any, key, def string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func boolParam(params map[string]any, key string, def bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}
