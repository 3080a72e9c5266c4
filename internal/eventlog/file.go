package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shaiso/Myx/internal/domain"
)

// FileSink пишет события в JSONL-файл.
//
// Каждое событие — отдельное открытие файла с O_APPEND и одна запись
// строки целиком: после сбоя процесса в журнале остаются только полные строки.
// Внутри процесса записи сериализуются мьютексом; несколько процессов,
// пишущих в один журнал, не поддерживаются.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink создаёт приёмник для файла path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path возвращает путь журнала.
func (s *FileSink) Path() string {
	return s.path
}

// Write добавляет событие в журнал.
func (s *FileSink) Write(_ context.Context, ev domain.ExecutionEvent) (err error) {
	line, err := json.Marshal(NewRecord(ev))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("write event log: %w", err)
	}
	return nil
}
