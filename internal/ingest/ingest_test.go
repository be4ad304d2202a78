package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Employee_Name,EmpID,Department,EmploymentStatus,Salary,DOB,DateofHire,RecruitmentSource,Absences,Shift Length,Notes
 Adinolfi  ,10026,Production       ,Active,62506,07-10-1983,2011-07-05,LinkedIn,1,8,  fine
Bacong,10084,IT/IS,Voluntarily Terminated,not disclosed,30/09/1975,01/13/2015,Indeed,,12,
,10196,Sales,Active,50000,01-01-1990,01-01-2010,Indeed,3,8,no name
Barone,,Sales,Active,50000,01-01-1990,01-01-2010,Indeed,3,8,no id
`

func TestCanonicalHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
		mapped bool
	}{
		{header: "EmpID", want: model.FieldAssociateID, mapped: true},
		{header: "empid", want: model.FieldAssociateID, mapped: true},
		{header: "Employee Name", want: model.FieldAssociateName, mapped: true},
		{header: " RecruitmentSource ", want: model.FieldRecruitment, mapped: true},
		{header: "LastPerformanceReview_Date", want: model.FieldLastReview, mapped: true},
		{header: "Days Absent", want: model.FieldAbsences, mapped: true},
		{header: "Shift Length", want: "Shift Length", mapped: false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, mapped := CanonicalHeader(tt.header)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.mapped, mapped)
		})
	}
}

func TestNormalizeHeaders_FirstMappingWins(t *testing.T) {
	got := NormalizeHeaders([]string{"id", "EmpID", "Name"})
	assert.Equal(t, []string{model.FieldAssociateID, "EmpID", model.FieldAssociateName}, got)
}

func TestNormalizeHeaders_NamesAreUnique(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    []string
	}{
		{
			name:    "same field in two spellings",
			headers: []string{"Department", "department"},
			want:    []string{model.FieldDepartment, "department_2"},
		},
		{
			name:    "unmapped header equal to a canonical name",
			headers: []string{"EmpID", "associate_id"},
			want:    []string{model.FieldAssociateID, "associate_id_2"},
		},
		{
			name:    "repeated unmapped header",
			headers: []string{"note", "note", "note"},
			want:    []string{"note", "note_2", "note_3"},
		},
		{
			name:    "suffix skips names already present",
			headers: []string{"note", "note_2", "note"},
			want:    []string{"note", "note_2", "note_3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeaders(tt.headers))
		})
	}
}

func TestLoad_DuplicateHeadersKeepBothCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.csv")
	require.NoError(t, os.WriteFile(path, []byte("Employee_Name,EmpID,Department,department\nAnn Lee,1,IT,Sales\n"), 0o600))

	result, err := Load(path)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "IT", result.Records[0][model.FieldDepartment])
	assert.Equal(t, "Sales", result.Records[0]["department_2"])
}

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("a,b,c\n1,2\n\n4,5,6,7\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, table.Headers)
	assert.Equal(t, [][]string{{"1", "2", ""}, {"4", "5", "6"}}, table.Rows)
	assert.Len(t, table.Warnings, 2)
	assert.Equal(t, "utf-8", table.Encoding)
}

func TestReadCSV_Encodings(t *testing.T) {
	t.Run("utf-8 bom", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,id\nAnn,1\n")...)
		table, err := ReadCSV(strings.NewReader(string(data)))
		require.NoError(t, err)
		assert.Equal(t, "name", table.Headers[0])
		assert.Equal(t, "utf-8-bom", table.Encoding)
	})

	t.Run("utf-16le bom", func(t *testing.T) {
		data := []byte{0xFF, 0xFE}
		for _, r := range "name,id\nAnn,1\n" {
			data = append(data, byte(r), 0)
		}
		table, err := ReadCSV(strings.NewReader(string(data)))
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "id"}, table.Headers)
		assert.Equal(t, [][]string{{"Ann", "1"}}, table.Rows)
		assert.Equal(t, "utf-16le", table.Encoding)
	})

	t.Run("latin-1", func(t *testing.T) {
		data := []byte("name,id\nJos\xe9,1\n")
		table, err := ReadCSV(strings.NewReader(string(data)))
		require.NoError(t, err)
		assert.Equal(t, "José", table.Rows[0][0])
		assert.Equal(t, "latin-1", table.Encoding)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.Error(t, err)
	})
}

func TestClean(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	records, dropped := Clean(table)
	assert.Equal(t, 2, dropped)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Adinolfi", first.Name())
	assert.Equal(t, "10026", first.ID())
	assert.Equal(t, "Production", first.Department())
	assert.Equal(t, "07-10-1983", first[model.FieldDOB])
	assert.Equal(t, "05-07-2011", first[model.FieldDateOfHire])
	assert.Equal(t, 62506.0, first[model.FieldSalary])
	assert.Equal(t, 1.0, first[model.FieldAbsences])
	assert.Equal(t, "LinkedIn", first[model.FieldRecruitment])
	assert.Equal(t, 8.0, first["Shift Length"])
	assert.Equal(t, "fine", first["Notes"])

	second := records[1]
	assert.Equal(t, "30-09-1975", second[model.FieldDOB])
	// 01/13/2015 is not day-first, so the field is dropped
	assert.False(t, second.Has(model.FieldDateOfHire))
	assert.Equal(t, 0.0, second[model.FieldSalary])
	assert.Equal(t, 0.0, second[model.FieldAbsences])
	assert.Equal(t, 12.0, second["Shift Length"])
	assert.False(t, second.Has("Notes"))
}

func TestClean_MixedColumnStaysText(t *testing.T) {
	table := &Table{
		Headers: []string{"id", "name", "zip", "grade"},
		Rows: [][]string{
			{"1", "Ann", "02134", "3"},
			{"2", "Bob", "MA-02", "NaN"},
		},
	}
	records, dropped := Clean(table)
	require.Len(t, records, 2)
	assert.Zero(t, dropped)
	assert.Equal(t, "02134", records[0][model.FieldZip])
	assert.Equal(t, "3", records[0]["grade"])
	assert.Equal(t, 1.0, records[0][model.FieldAssociateID])
}

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "associates.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0600))

	result, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", result.Format)
	assert.Equal(t, 4, result.Rows)
	assert.Equal(t, 2, result.Dropped)
	assert.Len(t, result.Records, 2)
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "associates.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Employee_Name", "EmpID", "Department", "EmploymentStatus", "Salary", "DOB"},
		{"Adinolfi", 10026, "Production", "Active", 62506, "07-10-1983"},
		{"Bacong", 10084, "IT/IS", "Voluntarily Terminated", 64955, "1975-09-30"},
		{"", 10196, "Sales", "Active", 50000, ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	result, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", result.Format)
	assert.Equal(t, 1, result.Dropped)
	require.Len(t, result.Records, 2)

	r := result.Records[1]
	assert.Equal(t, "Bacong", r.Name())
	assert.Equal(t, "10084", r.ID())
	assert.Equal(t, 64955.0, r[model.FieldSalary])
	assert.Equal(t, "30-09-1975", r[model.FieldDOB])
	assert.Equal(t, "Voluntarily Terminated", r[model.FieldEmploymentStatus])
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("unsupported extension", func(t *testing.T) {
		for _, name := range []string{"data.xls", "data.json", "data"} {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
			_, err := Load(path)
			assert.ErrorIs(t, err, common.ErrUnsupportedFormat, name)
		}
	})

	t.Run("no valid rows", func(t *testing.T) {
		path := filepath.Join(dir, "empty.csv")
		require.NoError(t, os.WriteFile(path, []byte("name,dept\n,IT\n"), 0600))
		_, err := Load(path)
		assert.ErrorIs(t, err, common.ErrNoData)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.csv"))
		assert.Error(t, err)
	})
}
