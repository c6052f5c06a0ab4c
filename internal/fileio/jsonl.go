package fileio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"listing-matcher/internal/match/model"
)

// Long listing lines (many passthrough fields) exceed bufio's 64KB default.
const maxLineBytes = 4 << 20

// readJSONLines reads one JSON object per line. Blank lines are skipped;
// numbers are kept as json.Number, and the line itself is kept under
// model.RawKey so the record can be written back unchanged.
func readJSONLines(r io.Reader) ([]map[string]any, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var out []map[string]any
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		if line == 1 {
			b = bytes.TrimPrefix(b, utf8BOM)
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if m == nil {
			return nil, fmt.Errorf("line %d: not a JSON object", line)
		}
		m[model.RawKey] = json.RawMessage(bytes.Clone(b))
		out = append(out, m)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
