package pagegen

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const byteOrderMark = "\ufeff"

// Row is one data line keyed by normalized column name.
type Row struct {
	// Index is the 1-based data row position; the header is not counted.
	Index int

	values  map[string]string
	headers []string // original spelling, BOM stripped and trimmed
	keys    []string // normalized, parallel to headers
}

// NewRow builds a row from a header and its cells. Cells beyond the header are
// dropped; a short record simply lacks the trailing columns.
func NewRow(index int, header, record []string, trimValues bool) Row {
	r := Row{
		Index:  index,
		values: make(map[string]string, len(header)),
	}
	for i, h := range header {
		if i >= len(record) {
			break
		}
		value := record[i]
		if trimValues {
			value = strings.TrimSpace(value)
		}
		key := NormalizeHeader(h)
		r.values[key] = value
		r.headers = append(r.headers, strings.TrimSpace(strings.ReplaceAll(h, byteOrderMark, "")))
		r.keys = append(r.keys, key)
	}
	return r
}

// NormalizeHeader trims whitespace, lowercases and strips byte-order marks,
// so "\ufeffDestination " and "destination" name the same column.
func NormalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(name, byteOrderMark, "")))
}

// Lookup returns the value for column, normalizing the name first.
func (r Row) Lookup(column string) (string, bool) {
	v, ok := r.values[NormalizeHeader(column)]
	return v, ok
}

// Get is Lookup that reports a *MissingFieldError for absent columns.
func (r Row) Get(column string) (string, error) {
	v, ok := r.Lookup(column)
	if !ok {
		return "", &MissingFieldError{Column: NormalizeHeader(column), Row: r.Index}
	}
	return v, nil
}

// First returns the value of the first column present, trying each in order.
func (r Row) First(columns ...string) (string, error) {
	for _, c := range columns {
		if v, ok := r.Lookup(c); ok {
			return v, nil
		}
	}
	if len(columns) == 0 {
		return "", errors.New("no column given")
	}
	return "", &MissingFieldError{Column: NormalizeHeader(columns[0]), Row: r.Index}
}

// Headers returns the row's column names as spelled in the file.
func (r Row) Headers() []string {
	return append([]string(nil), r.headers...)
}

// ReadRows opens path and parses it with ReadRowsFrom.
func ReadRows(path string, trimValues bool) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("data %s: %w", path, ErrFileNotFound)
		}
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	rows, err := ReadRowsFrom(f, trimValues)
	if err != nil {
		return nil, fmt.Errorf("data %s: %w", path, err)
	}
	return rows, nil
}

// ReadRowsFrom parses comma-separated input whose first line is the header.
// Blank lines are skipped and rows may be shorter than the header.
func ReadRowsFrom(r io.Reader, trimValues bool) ([]Row, error) {
	br := bufio.NewReader(r)
	// A leading BOM would otherwise turn a quoted first header cell into a bare-quote error.
	if head, err := br.Peek(len(byteOrderMark)); err == nil && bytes.Equal(head, []byte(byteOrderMark)) {
		_, _ = br.Discard(len(byteOrderMark))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, NewRow(len(rows)+1, header, record, trimValues))
	}
	return rows, nil
}
