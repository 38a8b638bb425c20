package pagegen

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned when the template or data file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrNoHeader is returned when the data file has no header line.
	ErrNoHeader = errors.New("data file has no header row")
)

// MissingFieldError reports a configured column that a row does not carry.
// Row is the 1-based data row position; the header line is not counted.
type MissingFieldError struct {
	Column string
	Row    int
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("row %d: missing column %q", e.Row, e.Column)
}

// UnsafeSlugError reports a filename component that could escape the output
// directory or produce an empty name.
type UnsafeSlugError struct {
	Column string
	Value  string
	Row    int
}

func (e *UnsafeSlugError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("row %d: column %q is empty and cannot be used in a file name", e.Row, e.Column)
	}
	return fmt.Sprintf("row %d: column %q value %q is not a safe file name component", e.Row, e.Column, e.Value)
}

// DuplicateOutputError reports two rows that produce the same page.
type DuplicateOutputError struct {
	Filename string
	FirstRow int
	Row      int
}

func (e *DuplicateOutputError) Error() string {
	return fmt.Sprintf("row %d: output %q was already produced by row %d", e.Row, e.Filename, e.FirstRow)
}

// NumericParseError is only raised under NumericStrict.
type NumericParseError struct {
	Value string
	Err   error
}

func (e *NumericParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as a number", e.Value)
}

func (e *NumericParseError) Unwrap() error {
	return e.Err
}
