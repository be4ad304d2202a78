package ingest

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses the first sheet of a workbook. The first non-empty row is
// the header.
func ReadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close workbook", "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	if len(sheets) > 1 {
		slog.Debug("Reading first sheet only", "sheet", sheets[0], "sheets", len(sheets))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("empty file: no header row found")
	}

	headers := rows[start]
	table := &Table{Headers: headers, Encoding: "xlsx"}
	for i, row := range rows[start+1:] {
		if isBlank(row) {
			continue
		}
		// GetRows trims trailing empty cells, so short rows are expected.
		if len(row) > len(headers) {
			table.Warnings = append(table.Warnings, Warning{
				Row:     start + i + 2,
				Message: fmt.Sprintf("row has %d columns, expected %d", len(row), len(headers)),
			})
		}
		table.Rows = append(table.Rows, fitRow(row, len(headers)))
	}

	return table, nil
}
