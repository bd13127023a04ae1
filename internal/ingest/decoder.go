package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Decoder errors surfaced before any row processing begins. These are
// file-format errors: reported once, non-retryable without a re-upload.
var (
	// ErrNotCSV rejects files without a .csv extension.
	ErrNotCSV = errors.New("Please upload a CSV file")
	// ErrTooManyRows rejects uploads above the per-batch row cap.
	ErrTooManyRows = fmt.Errorf("Max %d rows allowed", maxDataRows)
)

// RawRow is one decoded data row prior to normalization. Row is the 1-based
// data row index used in validation messages. Fields is positional; Named is
// populated only in named-header mode.
type RawRow struct {
	Row    int
	Fields []string
	Named  map[string]string
}

// Field returns the trimmed positional field at idx, or "" when absent.
func (r RawRow) Field(idx int) string {
	if idx < 0 || idx >= len(r.Fields) {
		return ""
	}
	return r.Fields[idx]
}

// Value returns the named field value, or "" when absent.
func (r RawRow) Value(name string) string {
	return r.Named[name]
}

// DecodeResult carries the qualifying rows plus the count of malformed rows
// that were skipped. Skipped rows are counted, never silently lost.
type DecodeResult struct {
	Rows    []RawRow
	Skipped int
}

// CheckFilename rejects uploads without a .csv extension before decoding.
func CheckFilename(name string) error {
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return ErrNotCSV
	}
	return nil
}

// Decode splits raw file bytes into data rows according to the template
// mode. An empty file yields an empty result, not an error.
func Decode(mode TemplateMode, data []byte) (DecodeResult, error) {
	switch mode {
	case TemplateNamed:
		return decodeNamed(data)
	default:
		return decodeFixed(data)
	}
}

func newReader(data []byte) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(stripBOM(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r
}

// decodeFixed drops the two header rows, trims every field, skips blank
// lines, and skips (but counts) rows shorter than the 23-column contract.
func decodeFixed(data []byte) (DecodeResult, error) {
	lines, err := readAll(newReader(data))
	if err != nil {
		return DecodeResult{}, err
	}
	if len(lines) <= fixedHeaderRows {
		return DecodeResult{}, nil
	}
	lines = lines[fixedHeaderRows:]
	if len(lines) > maxDataRows {
		return DecodeResult{}, ErrTooManyRows
	}

	var res DecodeResult
	row := 0
	for _, fields := range lines {
		trimFields(fields)
		if blank(fields) {
			continue
		}
		row++
		if len(fields) < fixedColumnCount {
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, RawRow{Row: row, Fields: fields})
	}
	return res, nil
}

// decodeNamed treats the first row as column names and maps every following
// row by header. Rows with no populated cells are skipped.
func decodeNamed(data []byte) (DecodeResult, error) {
	lines, err := readAll(newReader(data))
	if err != nil {
		return DecodeResult{}, err
	}
	if len(lines) < 2 {
		return DecodeResult{}, nil
	}
	headers := lines[0]
	trimFields(headers)
	lines = lines[1:]
	if len(lines) > maxDataRows {
		return DecodeResult{}, ErrTooManyRows
	}

	var res DecodeResult
	row := 0
	for _, fields := range lines {
		trimFields(fields)
		if blank(fields) {
			continue
		}
		row++
		named := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(fields) {
				named[h] = fields[i]
			} else {
				named[h] = ""
			}
		}
		res.Rows = append(res.Rows, RawRow{Row: row, Fields: fields, Named: named})
	}
	return res, nil
}

func readAll(r *csv.Reader) ([][]string, error) {
	var lines [][]string
	for {
		fields, err := r.Read()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		out := make([]string, len(fields))
		copy(out, fields)
		lines = append(lines, out)
	}
}

func trimFields(fields []string) {
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
}

func blank(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
