package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Decoders for the charsets chardet reports for catalog exports. Listings
// from European shops are often Latin-1/CP1252, Russian ones CP1251/KOI8-R.
var csvDecoders = map[string]encoding.Encoding{
	"windows-1251": charmap.Windows1251,
	"cp1251":       charmap.Windows1251,
	"koi8-r":       charmap.KOI8R,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"iso-8859-15":  charmap.ISO8859_15,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV reads CSV with headerRow (1-based), auto-detecting encoding and
// delimiter (comma or semicolon) and converting to UTF-8.
func readCSV(r io.Reader, headerRow int) ([]map[string]any, error) {
	br := bufio.NewReader(r)

	// Peek a bit to detect encoding and delimiter
	peeked, _ := br.Peek(4096)
	peek := append([]byte(nil), peeked...)
	if bytes.HasPrefix(peek, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
		peek = peek[len(utf8BOM):]
	}

	var dec io.Reader = br
	if len(peek) > 0 && !validUTF8Prefix(peek) {
		// не UTF-8: берём то, что скажет chardet, по умолчанию cp1252
		var enc encoding.Encoding = charmap.Windows1252
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			if e, ok := csvDecoders[strings.ToLower(det.Charset)]; ok {
				enc = e
			}
		}
		dec = transform.NewReader(br, enc.NewDecoder())
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = sniffDelimiter(peek)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	h := pickHeader(rows, headerRow)
	return rowsToMaps(rows, h, headerRow), nil
}

// sniffDelimiter picks ';' when the peeked lines have more semicolons than
// commas. Exports often start with a title line before the header.
func sniffDelimiter(peek []byte) rune {
	if bytes.Count(peek, []byte{';'}) > bytes.Count(peek, []byte{','}) {
		return ';'
	}
	return ','
}

// validUTF8Prefix ignores a rune cut off at the end of the peek buffer.
func validUTF8Prefix(b []byte) bool {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}
