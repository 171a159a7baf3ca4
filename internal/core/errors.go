package core

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Parse and ReadSource matches exactly
// one of these with errors.Is.
var (
	ErrTooFewColumns       = errors.New("too few columns")
	ErrEmptyOrHeaderOnly   = errors.New("empty file or header only")
	ErrNoDataRows          = errors.New("no data rows")
	ErrMissingValue        = errors.New("missing value")
	ErrInvalidNumber       = errors.New("invalid number")
	ErrInvalidFlag         = errors.New("invalid flag")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrReadFailure         = errors.New("read failure")
)

// Session errors.
var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrInvalidColor    = errors.New("invalid color")
)

// ValidationError describes why a file's content was rejected.
// Row and Col are 1-based and count the header line, so the first data
// row is row 2. They are zero when they do not apply.
type ValidationError struct {
	Kind  error
	Row   int
	Col   int
	Value string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrTooFewColumns:
		return fmt.Sprintf("CSV file must contain at least %d columns (Time, Position, Force)", MinColumns)
	case ErrEmptyOrHeaderOnly:
		return "CSV file must contain at least a header row and one data row"
	case ErrNoDataRows:
		return "CSV file contains no data rows"
	case ErrMissingValue:
		return fmt.Sprintf("missing value at row %d, column %d", e.Row, e.Col)
	case ErrInvalidNumber:
		return fmt.Sprintf("invalid number at row %d, column %d: %q", e.Row, e.Col, e.Value)
	case ErrInvalidFlag:
		return fmt.Sprintf("invalid flag at row %d: %q (column %d must contain only 0 or 1)", e.Row, e.Value, ColFlag+1)
	}
	return e.Kind.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// FileError ties a failure to the file that caused it.
type FileError struct {
	Filename string
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
