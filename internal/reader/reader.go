// Package reader turns spreadsheet files into ordered header/row
// tables. The engine downstream never sees a storage format, only a
// Table.
package reader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Table is one source file reduced to an ordered header row and data
// rows aligned to those headers.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Reader yields a Table for one source file
type Reader interface {
	Read(path string) (*Table, error)
}

// ForFile selects a reader by file extension
func ForFile(path string) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return &CSVReader{}, nil
	case ".xlsx", ".xlsm":
		return &XLSXReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
}

// ReadTable is a convenience wrapper: pick a reader and read the file
func ReadTable(path string) (*Table, error) {
	r, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	return r.Read(path)
}

// padRow aligns a row to the header width so downstream indexing never
// goes out of bounds on ragged exports.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
