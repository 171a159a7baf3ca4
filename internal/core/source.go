package core

// source.go reads uploaded files into memory as clean UTF-8 text.
//
// Files are decoded through golang.org/x/text so that a leading UTF-8 BOM
// (common in spreadsheet exports on Windows) is dropped and invalid byte
// sequences become U+FFFD instead of failing the read.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultMaxFileSize bounds a single file read (100MB).
const DefaultMaxFileSize = 100 * 1024 * 1024

// ErrFileTooLarge is wrapped in a ReadFailure when a file exceeds the size limit.
var ErrFileTooLarge = errors.New("file too large")

// FileSource supplies one named file.
type FileSource interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// OSFile is a FileSource backed by a path on disk.
type OSFile string

// Name returns the base name of the path.
func (f OSFile) Name() string { return filepath.Base(string(f)) }

// Open opens the file for reading.
func (f OSFile) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

// IsCSVName reports whether name carries a .csv extension (any case).
func IsCSVName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// ReadSource checks src's extension and reads its whole content as text.
// Non-CSV names fail with ErrUnsupportedFileType without being opened;
// every I/O problem, including exceeding maxBytes, wraps ErrReadFailure.
func ReadSource(src FileSource, maxBytes int64) (string, error) {
	if !IsCSVName(src.Name()) {
		return "", ErrUnsupportedFileType
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileSize
	}

	rc, err := src.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	if int64(len(raw)) > maxBytes {
		return "", fmt.Errorf("%w: %w (limit %d bytes)", ErrReadFailure, ErrFileTooLarge, maxBytes)
	}

	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	return string(text), nil
}
