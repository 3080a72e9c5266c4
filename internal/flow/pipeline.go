package flow

import "path/filepath"

// Convention — стандартные директории treatment внутри dataset.
type Convention struct {
	Treatment string
	Input     string
	Output    string

	// External — результат уходит во внешнюю систему,
	// пустой выход не делает flow неполным.
	External bool

	// Scaffold — шаг попадает в шаблон flow, создаваемый Init.
	Scaffold bool
}

// conventions — стадии dataset в порядке конвейера.
var conventions = []Convention{
	{Treatment: "parse", Input: "00_raw", Output: "10_parsed", Scaffold: true},
	{Treatment: "clean", Input: "10_parsed", Output: "20_clean", Scaffold: true},
	{Treatment: "resample", Input: "20_clean", Output: "25_resampled", Scaffold: true},
	{Treatment: "transform", Input: "25_resampled", Output: "30_transform", Scaffold: true},
	{Treatment: "normalize", Input: "30_transform", Output: "35_normalized", Scaffold: true},
	{Treatment: "aggregate", Input: "35_normalized", Output: "40_aggregated", Scaffold: true},
	{Treatment: "to_postgres", Input: "40_aggregated", Output: "60_postgres", External: true, Scaffold: true},
	{Treatment: "exportcsv", Input: "40_aggregated", Output: "61_exportcsv", Scaffold: true},
	{Treatment: "upload", Input: "40_aggregated", Output: "70_upload", External: true},
}

// RawStage — директория исходных данных dataset.
const RawStage = "00_raw"

// Conventions возвращает реестр соглашений в порядке конвейера.
func Conventions() []Convention {
	out := make([]Convention, len(conventions))
	copy(out, conventions)
	return out
}

// LookupConvention ищет соглашение для treatment.
func LookupConvention(treatment string) (Convention, bool) {
	for _, c := range conventions {
		if c.Treatment == treatment {
			return c, true
		}
	}
	return Convention{}, false
}

// DatasetPath разрешает путь шага относительно корня dataset.
// Абсолютные пути возвращаются без изменений.
func DatasetPath(datasetsDir, dataset, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(datasetsDir, dataset, path)
}
