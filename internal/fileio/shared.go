package fileio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"listing-matcher/internal/match/model"
)

// ReadAnyMaps — выберет парсер по расширению и вернёт записи как срез
// map[поле]значение. Для таблиц значения — строки, для JSON Lines — то, что
// лежит в объекте (строки, json.Number, вложенные структуры).
// headerRow — номер строки заголовков (1-based), для JSON не используется.
func ReadAnyMaps(r io.Reader, filename string, headerRow int) ([]map[string]any, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv":
		return readCSV(r, headerRow)
	case ".json", ".jsonl", ".ndjson", ".txt":
		return readJSONLines(r)
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedFile, filename)
	}
}

// ReadFileMaps opens path and reads it with ReadAnyMaps.
func ReadFileMaps(path string, headerRow int) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := ReadAnyMaps(f, path, headerRow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return recs, nil
}

// pickHeader — берёт строку заголовков и подставляет Column N для пустых.
// Ширина — по самой длинной строке: excelize обрезает пустые ячейки справа.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	h := rows[idx]
	out := make([]string, width)
	for i := range out {
		var v string
		if i < len(h) {
			v = normalizeCell(h[i])
		}
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// rowsToMaps — конвертирует AoA в []map по заголовкам, пропуская полностью пустые строки.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]any {
	start := headerRow // первая строка после заголовков
	if start < 1 {
		start = 1
	}
	var out []map[string]any
	for r := start; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]any, len(headers))
		empty := true
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = normalizeCell(rec[c])
			}
			if v != "" {
				empty = false
			}
			m[headers[c]] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

// normalizeCell убирает NBSP/NNBSP и пробелы по краям.
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ").Replace(s)
	return strings.TrimSpace(s)
}
