package curves

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed data/default_curves.csv
var defaultCurvesCSV []byte

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built in reference curves. They are parsed once and shared.
func Default() *Table {
	defaultOnce.Do(func() {
		rows, err := ReadCSV(bytes.NewReader(defaultCurvesCSV))
		if err == nil {
			defaultTable, err = NewTable(rows)
		}
		if err != nil {
			panic(fmt.Sprintf("invalid built in reference curves: %v", err))
		}
	})
	return defaultTable
}

// Format is a reference curve file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported reference curve file %q, expected .csv, .xlsx, .yaml or .yml", path)
}

// Read parses rows of the given format and builds a table.
func Read(r io.Reader, format Format) (*Table, error) {
	var rows []Row
	var err error
	switch format {
	case FormatCSV:
		rows, err = ReadCSV(r)
	case FormatXLSX:
		rows, err = ReadXLSX(r)
	case FormatYAML:
		rows, err = ReadYAML(r)
	default:
		return nil, fmt.Errorf("unsupported reference curve format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return NewTable(rows)
}

// Load reads a reference curve file. An empty path returns the built in curves.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	t, err := Read(file, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference curves from %s: %w", path, err)
	}
	return t, nil
}

// Write writes the table in the given format.
func Write(w io.Writer, t *Table, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	case FormatYAML:
		return WriteYAML(w, t)
	}
	return fmt.Errorf("unsupported reference curve format %q", format)
}
