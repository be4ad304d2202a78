// Package ingest reads associate spreadsheets (.csv, .xlsx) into records:
// headers are mapped onto canonical field names, cells are trimmed, dates
// reformatted and numbers typed.
package ingest

import (
	"fmt"
	"strings"

	"github.com/Veraticus/hr-attrition/internal/model"
)

// ColumnMap lists the header spellings accepted for each canonical field.
// Matching ignores case and treats spaces as underscores.
var ColumnMap = map[string][]string{
	model.FieldAssociateID:          {"id", "emp_id", "associateid", "employee_id", "EmpID"},
	model.FieldAssociateName:        {"name", "full_name", "employee_name", "Employee_Name"},
	model.FieldGender:               {"gender", "Sex"},
	model.FieldMaritalStatus:        {"marital_status", "married_status", "MaritalDesc"},
	model.FieldDepartment:           {"Department", "dept", "division"},
	model.FieldDepartmentID:         {"department_id", "dept_id", "division_id", "DeptID"},
	model.FieldEmploymentStatus:     {"employment_status", "EmploymentStatus", "job_status"},
	model.FieldManagerName:          {"ManagerName", "manager_name", "supervisor"},
	model.FieldManagerID:            {"ManagerID", "supervisor_id"},
	model.FieldRecruitment:          {"RecruitmentSource", "hiring_source", "source"},
	model.FieldPerformanceScore:     {"PerformanceScore", "review_score", "perf_score"},
	model.FieldEngagementScore:      {"EngagementSurvey", "employee_engagement"},
	model.FieldEmployeeSatisfaction: {"employee_satisfaction", "EmpSatisfaction", "job_satisfaction"},
	model.FieldTerminationReason:    {"TermReason", "reason_for_termination"},
	model.FieldSalary:               {"Salary", "pay", "ctc", "wage"},
	model.FieldSpecialProject:       {"SpecialProjectsCount", "project", "extra_project"},
	model.FieldCountry:              {"Country", "nation"},
	model.FieldState:                {"State", "province", "region"},
	model.FieldZip:                  {"Zip", "zipcode", "postal_code"},
	model.FieldDOB:                  {"DOB", "dateofbirth", "date_of_birth", "birthdate"},
	model.FieldDateOfHire:           {"DateofHire", "hire_date", "joining_date"},
	model.FieldRace:                 {"RaceDesc", "ethnicity", "ethnic_group"},
	model.FieldLastReview:           {"LastPerformanceReview_Date", "last_review_date", "last_performance_review"},
	model.FieldDaysLate:             {"DaysLateLast30", "lateness_days", "days_late_work"},
	model.FieldAbsences:             {"Absences", "absence_days", "days_absent"},
}

var variantIndex = func() map[string]string {
	index := make(map[string]string)
	for canonical, variants := range ColumnMap {
		for _, v := range variants {
			index[headerKey(v)] = canonical
		}
	}
	return index
}()

func headerKey(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// CanonicalHeader returns the canonical field for a header, or the trimmed
// header itself when it has no mapping.
func CanonicalHeader(h string) (string, bool) {
	if canonical, ok := variantIndex[headerKey(h)]; ok {
		return canonical, true
	}
	return strings.TrimSpace(h), false
}

// NormalizeHeaders maps every header onto its field name. Names are unique:
// when two headers map to the same canonical field the first one wins and a
// later one keeps its own name, and a name already taken gets a numeric
// suffix (department, department_2).
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	taken := make(map[string]bool, len(headers))
	for i, h := range headers {
		name, mapped := CanonicalHeader(h)
		if mapped && taken[name] {
			name = strings.TrimSpace(h)
		}
		if taken[name] {
			base := name
			for n := 2; taken[name]; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
			}
		}
		taken[name] = true
		out[i] = name
	}
	return out
}
