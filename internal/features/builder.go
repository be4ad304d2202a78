// Package features turns heterogeneous records into a numeric matrix: it
// drops identifier and date fields, one-hot encodes categorical fields and
// aligns the result to a known column list.
package features

import (
	"fmt"
	"sort"

	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/Veraticus/hr-attrition/internal/model"
)

// DefaultExclude lists fields that never become model inputs.
var DefaultExclude = []string{
	model.FieldAssociateID,
	model.FieldAssociateName,
	model.FieldDOB,
	model.FieldDateOfHire,
	model.FieldLastReview,
	"LastPerformanceReview_Date",
}

// Options controls a Build call.
type Options struct {
	// KnownColumns, when non-nil, is the training-time column list the
	// output is reindexed to.
	KnownColumns []string
	// Exclude adds fields to DefaultExclude.
	Exclude []string
	// RequireLabel fails the build when any record lacks the label.
	RequireLabel bool
}

// Matrix is a dense feature table with named columns.
type Matrix struct {
	Columns []string
	Rows    [][]float64
}

// Width returns the number of columns.
func (m *Matrix) Width() int {
	return len(m.Columns)
}

// Row returns row i.
func (m *Matrix) Row(i int) []float64 {
	return m.Rows[i]
}

// Subset returns a matrix holding only the given rows.
func (m *Matrix) Subset(idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = m.Rows[j]
	}
	return out
}

// Align reindexes the matrix to exactly the known columns, in their order.
// Known columns missing here are filled with 0; extra columns are dropped.
func (m *Matrix) Align(known []string) *Matrix {
	position := make(map[string]int, len(m.Columns))
	for i, c := range m.Columns {
		position[c] = i
	}

	rows := make([][]float64, len(m.Rows))
	for i, row := range m.Rows {
		aligned := make([]float64, len(known))
		for j, c := range known {
			if p, ok := position[c]; ok {
				aligned[j] = row[p]
			}
		}
		rows[i] = aligned
	}

	return &Matrix{
		Columns: append([]string(nil), known...),
		Rows:    rows,
	}
}

// Build encodes records into a feature matrix. Labels are returned when every
// record carries the terminated field, and are required when
// opts.RequireLabel is set.
func Build(records []model.Record, opts Options) (*Matrix, []int, error) {
	labels, err := extractLabels(records, opts.RequireLabel)
	if err != nil {
		return nil, nil, err
	}

	exclude := make(map[string]bool, len(DefaultExclude)+len(opts.Exclude)+1)
	for _, f := range DefaultExclude {
		exclude[f] = true
	}
	for _, f := range opts.Exclude {
		exclude[f] = true
	}
	exclude[model.FieldTerminated] = true

	numeric, categorical := classifyFields(records, exclude)

	columns := make([]string, 0, len(numeric))
	columns = append(columns, numeric...)

	type indicator struct {
		field string
		value string
	}
	var indicators []indicator
	for _, field := range categorical {
		for _, value := range categories(records, field)[1:] {
			indicators = append(indicators, indicator{field: field, value: value})
			columns = append(columns, ColumnName(field, value))
		}
	}

	if err := checkUnique(columns); err != nil {
		return nil, nil, err
	}

	rows := make([][]float64, len(records))
	for i, r := range records {
		row := make([]float64, len(columns))
		for j, field := range numeric {
			if v, ok := r.Float(field); ok {
				row[j] = v
			}
		}
		for k, ind := range indicators {
			if value, ok := r.Text(ind.field); ok && value == ind.value {
				row[len(numeric)+k] = 1
			}
		}
		rows[i] = row
	}

	matrix := &Matrix{Columns: columns, Rows: rows}
	if opts.KnownColumns != nil {
		matrix = matrix.Align(opts.KnownColumns)
	}

	return matrix, labels, nil
}

// ColumnName names the indicator column for a categorical value.
func ColumnName(field, value string) string {
	return field + "_" + value
}

// checkUnique rejects column lists where an indicator name collides with
// another column, since Align could not tell them apart.
func checkUnique(columns []string) error {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return fmt.Errorf("%w: duplicate feature column %q", common.ErrSchema, c)
		}
		seen[c] = true
	}
	return nil
}

// Drift measures how far the current column set is from the known one: the
// number of columns in exactly one of the two lists, relative to the known
// list. Zero means identical sets.
func Drift(known, current []string) float64 {
	knownSet := make(map[string]bool, len(known))
	for _, c := range known {
		knownSet[c] = true
	}
	currentSet := make(map[string]bool, len(current))
	for _, c := range current {
		currentSet[c] = true
	}

	diff := 0
	for c := range knownSet {
		if !currentSet[c] {
			diff++
		}
	}
	for c := range currentSet {
		if !knownSet[c] {
			diff++
		}
	}

	if len(knownSet) == 0 {
		if diff == 0 {
			return 0
		}
		return float64(diff)
	}
	return float64(diff) / float64(len(knownSet))
}

func extractLabels(records []model.Record, required bool) ([]int, error) {
	labels := make([]int, 0, len(records))
	for i, r := range records {
		v, ok := r[model.FieldTerminated]
		if !ok || v == nil {
			if required {
				return nil, fmt.Errorf("%w: record %d has no %s", common.ErrSchema, i, model.FieldTerminated)
			}
			return nil, nil
		}
		f, ok := model.AsFloat(v)
		if !ok || (f != 0 && f != 1) {
			return nil, fmt.Errorf("%w: record %d has invalid %s %v", common.ErrSchema, i, model.FieldTerminated, v)
		}
		labels = append(labels, int(f))
	}
	return labels, nil
}

// classifyFields splits the non-excluded fields into numeric and
// categorical, each sorted by name. A field is numeric when every present
// value is a number or bool.
func classifyFields(records []model.Record, exclude map[string]bool) (numeric, categorical []string) {
	isNumeric := make(map[string]bool)
	for _, r := range records {
		for field, v := range r {
			if exclude[field] || v == nil {
				continue
			}
			_, num := model.AsFloat(v)
			prev, seen := isNumeric[field]
			isNumeric[field] = num && (!seen || prev)
		}
	}

	for field, num := range isNumeric {
		if num {
			numeric = append(numeric, field)
		} else {
			categorical = append(categorical, field)
		}
	}
	sort.Strings(numeric)
	sort.Strings(categorical)
	return numeric, categorical
}

// categories returns the sorted distinct values of a categorical field.
func categories(records []model.Record, field string) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		if value, ok := r.Text(field); ok {
			seen[value] = true
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
