package core

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// memFile is an in-memory FileSource.
type memFile struct {
	name    string
	content string
	openErr error
}

func (f memFile) Name() string { return f.name }

func (f memFile) Open() (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func TestReadSource(t *testing.T) {
	tests := []struct {
		name     string
		src      FileSource
		maxBytes int64
		want     string
		wantErr  error
	}{
		{"plain", memFile{name: "a.csv", content: "T,P,F\n"}, 0, "T,P,F\n", nil},
		{"upper-case extension", memFile{name: "A.CSV", content: "x"}, 0, "x", nil},
		{"BOM stripped", memFile{name: "a.csv", content: "\ufeffTime,Position"}, 0, "Time,Position", nil},
		{"invalid UTF-8 replaced", memFile{name: "a.csv", content: "a\xffb"}, 0, "a\ufffdb", nil},
		{"exactly at limit", memFile{name: "a.csv", content: "12345"}, 5, "12345", nil},
		{"over limit", memFile{name: "a.csv", content: "123456"}, 5, "", ErrFileTooLarge},
		{"not csv", memFile{name: "a.txt", content: "x"}, 0, "", ErrUnsupportedFileType},
		{"no extension", memFile{name: "csv", content: "x"}, 0, "", ErrUnsupportedFileType},
		{"open fails", memFile{name: "a.csv", openErr: errors.New("permission denied")}, 0, "", ErrReadFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadSource(tt.src, tt.maxBytes)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadSource() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ReadSource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadSource_TooLargeIsReadFailure(t *testing.T) {
	_, err := ReadSource(memFile{name: "a.csv", content: "123456"}, 5)
	if !errors.Is(err, ErrReadFailure) || !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("error = %v, want both ErrReadFailure and ErrFileTooLarge", err)
	}
}

func TestOSFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weld.csv")
	if err := os.WriteFile(path, []byte("T,P,F\n0,1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := OSFile(path)
	if src.Name() != "weld.csv" {
		t.Errorf("Name() = %q, want base name", src.Name())
	}
	got, err := ReadSource(src, 0)
	if err != nil || got != "T,P,F\n0,1,2\n" {
		t.Errorf("ReadSource() = %q, %v", got, err)
	}

	_, err = ReadSource(OSFile(filepath.Join(t.TempDir(), "missing.csv")), 0)
	if !errors.Is(err, ErrReadFailure) {
		t.Errorf("missing file error = %v, want ErrReadFailure", err)
	}
}
