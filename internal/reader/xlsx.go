package reader

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// XLSXReader reads Excel exports via excelize. Only the first sheet is
// consumed: each assessment round ships as its own file.
type XLSXReader struct{}

// Read parses the first sheet of an XLSX file into a Table
func (r *XLSXReader) Read(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in file: %s", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty sheet %q in %s", sheets[0], path)
	}

	headers := rows[0]
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		data = append(data, padRow(row, len(headers)))
	}

	return &Table{
		Name:    filepath.Base(path),
		Headers: headers,
		Rows:    data,
	}, nil
}
