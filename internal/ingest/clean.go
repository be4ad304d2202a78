package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/hr-attrition/internal/model"
)

// DateLayout is the stored format for dob and dateofhire.
const DateLayout = "02-01-2006"

// Accepted input layouts, tried in order. Single-digit days and months parse
// as well.
var (
	dobLayouts  = []string{"2-1-2006", "2/1/2006", "2006-1-2"}
	hireLayouts = []string{"2-1-2006", "2006-1-2", "2/1/2006"}
)

// NumericFields are coerced to numbers; invalid or empty cells become 0.
var NumericFields = []string{
	model.FieldSalary,
	model.FieldPerformanceScore,
	model.FieldEngagementScore,
	model.FieldEmployeeSatisfaction,
	model.FieldDaysLate,
	model.FieldAbsences,
}

// Clean turns a table into records. It returns the records and the number of
// rows dropped for lacking an associate id or name.
func Clean(table *Table) ([]model.Record, int) {
	headers := NormalizeHeaders(table.Headers)

	forced := make(map[string]bool, len(NumericFields))
	for _, f := range NumericFields {
		forced[f] = true
	}

	// A non-canonical column is numeric when every non-empty cell parses.
	numeric := make(map[int]bool, len(headers))
	for j, h := range headers {
		if forced[h] || h == model.FieldDOB || h == model.FieldDateOfHire || h == "" {
			continue
		}
		numeric[j] = columnIsNumeric(table.Rows, j)
	}

	records := make([]model.Record, 0, len(table.Rows))
	dropped := 0
	for _, row := range table.Rows {
		r := make(model.Record, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			cell := strings.TrimSpace(row[j])

			switch {
			case forced[h]:
				r[h] = coerceNumber(cell)
			case h == model.FieldDOB:
				if d, ok := reformatDate(cell, dobLayouts); ok {
					r[h] = d
				}
			case h == model.FieldDateOfHire:
				if d, ok := reformatDate(cell, hireLayouts); ok {
					r[h] = d
				}
			case cell == "":
			case numeric[j]:
				f, _ := parseFinite(cell)
				r[h] = f
			default:
				r[h] = cell
			}
		}

		if !r.Has(model.FieldAssociateID) || !r.Has(model.FieldAssociateName) {
			dropped++
			continue
		}
		records = append(records, r)
	}

	return records, dropped
}

func columnIsNumeric(rows [][]string, j int) bool {
	seen := false
	for _, row := range rows {
		cell := strings.TrimSpace(row[j])
		if cell == "" {
			continue
		}
		if _, ok := parseFinite(cell); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func coerceNumber(cell string) float64 {
	f, _ := parseFinite(strings.ReplaceAll(cell, ",", ""))
	return f
}

// parseFinite parses a float, rejecting NaN and infinities.
func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func reformatDate(cell string, layouts []string) (string, bool) {
	if cell == "" {
		return "", false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}
