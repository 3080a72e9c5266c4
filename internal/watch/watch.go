// Package watch запускает инкрементальные прогоны flow при изменениях
// во входной директории его первого шага.
//
// События fsnotify собираются до паузы длиной Debounce, после чего
// выполняется один прогон с --last. Прогоны последовательны: изменения
// во время прогона приводят ровно к одному следующему прогону.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/flow"
)

// DefaultDebounce — пауза по умолчанию.
const DefaultDebounce = 2 * time.Second

// ErrNoDir — не задана директория наблюдения.
var ErrNoDir = errors.New("watch directory is required")

// FlowRunner выполняет flow (*flow.Composer).
type FlowRunner interface {
	Run(ctx context.Context, req flow.Request) (domain.Outcome, error)
}

// Watcher следит за директорией и запускает flow.
type Watcher struct {
	runner   FlowRunner
	flow     string
	dir      string
	mode     domain.OutputMode
	debounce time.Duration
	logger   *slog.Logger

	fsw *fsnotify.Watcher

	// trigger — ожидающий прогон (ёмкость 1, лишние сигналы сливаются).
	trigger chan struct{}
	runs    int
	mu      sync.Mutex
}

// Config — конфигурация Watcher.
type Config struct {
	Runner FlowRunner
	Flow   string

	// Dir — наблюдаемая директория (вход первого шага). Создаётся, если её нет.
	Dir string

	Mode     domain.OutputMode
	Debounce time.Duration
	Logger   *slog.Logger
}

// New создаёт Watcher и ставит наблюдение на Dir и все её поддиректории.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, ErrNoDir
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		runner:   cfg.Runner,
		flow:     cfg.Flow,
		dir:      cfg.Dir,
		mode:     cfg.Mode,
		debounce: debounce,
		logger:   logger.With("flow", cfg.Flow),
		fsw:      fsw,
		trigger:  make(chan struct{}, 1),
	}
	if err := w.addTree(cfg.Dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Runs возвращает число выполненных прогонов.
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Run обрабатывает события до отмены ctx. Блокирующий.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.logger.Info("watching for changes", "dir", w.dir, "debounce", w.debounce)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()
	defer wg.Wait()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped")
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-timer.C:
			select {
			case w.trigger <- struct{}{}:
			default:
			}
		}
	}
}

// relevant фильтрует события и добавляет наблюдение на новые директории.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "dir", ev.Name, "error", err)
			}
		}
	}
	return true
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	outcome, err := w.runner.Run(ctx, flow.Request{Flow: w.flow, Mode: w.mode, Last: true})

	w.mu.Lock()
	w.runs++
	w.mu.Unlock()

	switch {
	case err != nil:
		w.logger.Error("incremental run failed", "error", err)
	case outcome.IsNoOp():
		w.logger.Info("incremental run had nothing to do", "reason", outcome.Reason)
	default:
		w.logger.Info("incremental run completed", "steps", outcome.Steps, "duration", outcome.Duration)
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
