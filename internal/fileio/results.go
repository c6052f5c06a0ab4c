package fileio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"listing-matcher/internal/match/model"
)

// WriteResults writes one compact JSON object per product:
// {"product_name":"…","listings":[…]}. With suppressEmpty, products without
// listings are skipped.
func WriteResults(w io.Writer, results []model.ProductResult, suppressEmpty bool) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		if suppressEmpty && len(r.Listings) == 0 {
			continue
		}
		if r.Listings == nil {
			r.Listings = []json.RawMessage{}
		}
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write %q: %w", r.ProductName, err)
		}
	}
	return bw.Flush()
}

// ReadResults parses a file written by WriteResults. Listing objects are
// kept byte-for-byte.
func ReadResults(r io.Reader) ([]model.ProductResult, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var out []model.ProductResult
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var pr model.ProductResult
		if err := json.Unmarshal(b, &pr); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, pr)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
