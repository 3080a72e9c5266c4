package timewindow

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/shaiso/Myx/internal/domain"
)

// MinDeltaSpan — минимальная ширина инкрементального окна.
const MinDeltaSpan = time.Hour

// ResolutionKind — результат разрешения инкрементального окна.
type ResolutionKind string

const (
	// ResolveFull — обработать всё (первый запуск).
	ResolveFull ResolutionKind = "full"

	// ResolveDelta — обработать только окно Window.
	ResolveDelta ResolutionKind = "delta"

	// ResolveUpToDate — выход уже актуален, обрабатывать нечего.
	ResolveUpToDate ResolutionKind = "up-to-date"
)

// Resolution — инкрементальное окно для пары вход/выход.
type Resolution struct {
	Kind ResolutionKind

	// Window — окно для ResolveDelta; пустое для остальных.
	Window domain.TimeWindow

	// InputLast/OutputLast — последние timestamps директорий, если найдены.
	InputLast  *time.Time
	OutputLast *time.Time
}

// dirScan — результат обхода директории.
type dirScan struct {
	columnarFiles int
	columnarMax   *time.Time
	fileDateMax   *time.Time
}

// last — columnar максимум, иначе последняя дата из имён файлов в 23:59:59 UTC.
func (s dirScan) last() (time.Time, bool) {
	if s.columnarMax != nil {
		return *s.columnarMax, true
	}
	if s.fileDateMax != nil {
		return s.fileDateMax.Add(24*time.Hour - time.Second), true
	}
	return time.Time{}, false
}

func scanDir(dir string) (dirScan, error) {
	var s dirScan

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		if day, ok := ExtractDate(d.Name()); ok {
			if s.fileDateMax == nil || day.After(*s.fileDateMax) {
				s.fileDateMax = &day
			}
		}

		if filepath.Ext(d.Name()) != ColumnarExt {
			return nil
		}
		s.columnarFiles++

		ts, ok, err := MaxTimestamp(path)
		if err != nil {
			return err
		}
		if ok && (s.columnarMax == nil || ts.After(*s.columnarMax)) {
			s.columnarMax = &ts
		}
		return nil
	})
	if err != nil {
		return dirScan{}, err
	}
	return s, nil
}

// LastTimestamp возвращает самый поздний timestamp директории.
//
// Сначала ищется максимум по timestamp-колонкам всех parquet-файлов.
// Если таких значений нет — берётся последняя дата из имён файлов,
// приведённая к 23:59:59 UTC. false — в директории нет ничего датированного.
// Отсутствующая директория считается пустой.
func LastTimestamp(dir string) (time.Time, bool, error) {
	s, err := scanDir(dir)
	if err != nil {
		return time.Time{}, false, err
	}
	ts, ok := s.last()
	return ts, ok, nil
}

// ResolveIncrementalRange вычисляет окно для режима --last.
//
//  1. Во входе нет timestamps — ResolveFull.
//  2. В выходе нет timestamps — ResolveFull (первый запуск).
//  3. Ни в одной директории нет parquet, и последняя дата в именах выхода
//     не раньше даты входа — ResolveUpToDate (без сравнения 23:59:59).
//  4. last(output) ≥ last(input) — ResolveUpToDate.
//  5. Иначе окно [floor(last(output), час), last(input)] шириной не меньше часа.
func ResolveIncrementalRange(inputDir, outputDir string) (Resolution, error) {
	in, err := scanDir(inputDir)
	if err != nil {
		return Resolution{}, err
	}
	inLast, ok := in.last()
	if !ok {
		return Resolution{Kind: ResolveFull}, nil
	}

	out, err := scanDir(outputDir)
	if err != nil {
		return Resolution{}, err
	}
	outLast, ok := out.last()
	if !ok {
		return Resolution{Kind: ResolveFull, InputLast: &inLast}, nil
	}

	res := Resolution{InputLast: &inLast, OutputLast: &outLast}

	if in.columnarFiles == 0 && out.columnarFiles == 0 &&
		in.fileDateMax != nil && out.fileDateMax != nil &&
		!out.fileDateMax.Before(*in.fileDateMax) {
		res.Kind = ResolveUpToDate
		return res, nil
	}

	if !outLast.Before(inLast) {
		res.Kind = ResolveUpToDate
		return res, nil
	}

	from := outLast.UTC().Truncate(time.Hour)
	to := inLast.UTC()
	if to.Sub(from) < MinDeltaSpan {
		from = to.Add(-MinDeltaSpan)
	}

	res.Kind = ResolveDelta
	res.Window = domain.TimeWindow{From: &from, To: &to}
	return res, nil
}
