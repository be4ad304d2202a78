package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/Veraticus/hr-attrition/internal/model"
)

// Result is the outcome of loading one file.
type Result struct {
	Records  []model.Record
	Warnings []Warning
	Format   string
	Encoding string
	Rows     int
	Dropped  int
}

// Load reads a .csv or .xlsx file into cleaned records. Other extensions
// yield common.ErrUnsupportedFormat and a file without any usable row yields
// common.ErrNoData.
func Load(path string) (*Result, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	var (
		table *Table
		err   error
	)
	switch format {
	case "csv":
		table, err = readCSVFile(path)
	case "xlsx", "xlsm":
		table, err = ReadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %q (use .csv or .xlsx)", common.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return build(table, format)
}

func readCSVFile(path string) (*Table, error) {
	// #nosec G304 - path is supplied by the operator
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(f)
}

func build(table *Table, format string) (*Result, error) {
	records, dropped := Clean(table)

	for _, w := range table.Warnings {
		slog.Warn("Import row issue", "row", w.Row, "message", w.Message)
	}
	if dropped > 0 {
		slog.Info("Dropped rows without associate id or name", "count", dropped)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no valid rows found after cleaning", common.ErrNoData)
	}

	return &Result{
		Records:  records,
		Warnings: table.Warnings,
		Format:   format,
		Encoding: table.Encoding,
		Rows:     len(table.Rows),
		Dropped:  dropped,
	}, nil
}
