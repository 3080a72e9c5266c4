package timewindow

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/deprecated"
)

// ColumnarExt — расширение колоночных файлов.
const ColumnarExt = ".parquet"

// MaxTimestamp возвращает максимальное значение среди всех timestamp-колонок
// parquet-файла (логический TIMESTAMP или INT96).
// false — в файле нет timestamp-колонок или они пусты.
func MaxTimestamp(path string) (time.Time, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return time.Time{}, false, err
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return time.Time{}, false, fmt.Errorf("open parquet %s: %w", path, err)
	}

	var (
		best  time.Time
		found bool
	)

	schema := pf.Schema()
	for _, colPath := range schema.Columns() {
		leaf, ok := schema.Lookup(colPath...)
		if !ok {
			continue
		}
		decode, ok := timestampDecoder(leaf.Node)
		if !ok {
			continue
		}

		for _, rg := range pf.RowGroups() {
			chunk := rg.ColumnChunks()[leaf.ColumnIndex]
			ts, ok, err := chunkMax(chunk, decode)
			if err != nil {
				return time.Time{}, false, fmt.Errorf("read parquet %s: %w", path, err)
			}
			if ok && (!found || ts.After(best)) {
				best, found = ts, true
			}
		}
	}

	return best, found, nil
}

// julianUnixEpoch — юлианский день 1970-01-01.
const julianUnixEpoch = 2440588

// timestampDecoder возвращает конвертер значения timestamp-колонки в время UTC:
// логический тип TIMESTAMP (millis/micros/nanos) или физический INT96
// (pyarrow, Spark, Hive).
func timestampDecoder(node parquet.Node) (func(parquet.Value) time.Time, bool) {
	typ := node.Type()
	if typ.Kind() == parquet.Int96 {
		return func(v parquet.Value) time.Time { return int96Time(v.Int96()) }, true
	}

	lt := typ.LogicalType()
	if lt == nil || lt.Timestamp == nil {
		return nil, false
	}

	unit := lt.Timestamp.Unit
	switch {
	case unit.Millis != nil:
		return func(v parquet.Value) time.Time { return time.UnixMilli(v.Int64()).UTC() }, true
	case unit.Micros != nil:
		return func(v parquet.Value) time.Time { return time.UnixMicro(v.Int64()).UTC() }, true
	case unit.Nanos != nil:
		return func(v parquet.Value) time.Time { return time.Unix(0, v.Int64()).UTC() }, true
	}
	return nil, false
}

// int96Time: младшие 8 байт — наносекунды от начала суток, старшие 4 — юлианский день.
func int96Time(v deprecated.Int96) time.Time {
	nanos := int64(v[1])<<32 | int64(v[0])
	days := int64(v[2]) - julianUnixEpoch
	return time.Unix(days*86400, nanos).UTC()
}

// chunkMax — максимум времени по границам страниц column chunk.
func chunkMax(chunk parquet.ColumnChunk, decode func(parquet.Value) time.Time) (time.Time, bool, error) {
	pages := chunk.Pages()
	defer pages.Close()

	var (
		best  time.Time
		found bool
	)
	for {
		page, err := pages.ReadPage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return time.Time{}, false, err
		}

		_, maxV, ok := page.Bounds()
		if ok && !maxV.IsNull() {
			ts := decode(maxV)
			if !found || ts.After(best) {
				best, found = ts, true
			}
		}
	}
	return best, found, nil
}
