// Package model defines the core domain models used throughout the application.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Canonical field names shared by imports, reports and the feature builder.
const (
	FieldAssociateID          = "associate_id"
	FieldAssociateName        = "associate_name"
	FieldGender               = "gender"
	FieldMaritalStatus        = "marital_status"
	FieldDepartment           = "department"
	FieldDepartmentID         = "department_id"
	FieldEmploymentStatus     = "employment_status"
	FieldManagerName          = "manager_name"
	FieldManagerID            = "manager_id"
	FieldRecruitment          = "recruitment"
	FieldPerformanceScore     = "performance_score"
	FieldEngagementScore      = "engagement_score"
	FieldEmployeeSatisfaction = "employee_satisfaction"
	FieldTerminationReason    = "termination_reason"
	FieldSalary               = "salary"
	FieldSpecialProject       = "special_project"
	FieldCountry              = "country"
	FieldState                = "state"
	FieldZip                  = "zip"
	FieldDOB                  = "dob"
	FieldDateOfHire           = "dateofhire"
	FieldRace                 = "race"
	FieldLastReview           = "last_review"
	FieldDaysLate             = "days_late"
	FieldAbsences             = "absences"

	// FieldTerminated is the derived training label.
	FieldTerminated = "terminated"
)

// CanonicalFields lists every field with a typed accessor or import mapping.
var CanonicalFields = []string{
	FieldAssociateID, FieldAssociateName, FieldGender, FieldMaritalStatus,
	FieldDepartment, FieldDepartmentID, FieldEmploymentStatus, FieldManagerName,
	FieldManagerID, FieldRecruitment, FieldPerformanceScore, FieldEngagementScore,
	FieldEmployeeSatisfaction, FieldTerminationReason, FieldSalary,
	FieldSpecialProject, FieldCountry, FieldState, FieldZip, FieldDOB,
	FieldDateOfHire, FieldRace, FieldLastReview, FieldDaysLate, FieldAbsences,
}

var canonicalSet = func() map[string]bool {
	set := make(map[string]bool, len(CanonicalFields)+1)
	for _, f := range CanonicalFields {
		set[f] = true
	}
	set[FieldTerminated] = true
	return set
}()

// Record is one employee-like document. Fields are heterogeneous and any of
// them may be missing; values are strings, float64, int, bool or nil.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether the field is present with a non-nil value.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// Text returns the field rendered as a string.
func (r Record) Text(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return fmt.Sprint(val), true
	}
}

// Float returns the field as a number if it holds one.
func (r Record) Float(field string) (float64, bool) {
	v, ok := r[field]
	if !ok {
		return 0, false
	}
	return AsFloat(v)
}

// ID returns the associate identifier.
func (r Record) ID() string {
	s, _ := r.Text(FieldAssociateID)
	return s
}

// Name returns the associate name.
func (r Record) Name() string {
	s, _ := r.Text(FieldAssociateName)
	return s
}

// Department returns the department name.
func (r Record) Department() string {
	s, _ := r.Text(FieldDepartment)
	return s
}

// Status returns the employment status and whether it was present.
func (r Record) Status() (string, bool) {
	return r.Text(FieldEmploymentStatus)
}

// IsActive reports whether the employment status is "active", ignoring case
// and surrounding whitespace.
func (r Record) IsActive() bool {
	status, ok := r.Status()
	return ok && strings.EqualFold(strings.TrimSpace(status), "active")
}

// Extra returns the fields that have no canonical meaning.
func (r Record) Extra() map[string]any {
	extra := make(map[string]any)
	for k, v := range r {
		if !canonicalSet[k] {
			extra[k] = v
		}
	}
	return extra
}

// Label returns the derived terminated label: 0 when the status is active,
// 1 otherwise. The second result is false when the record has no status.
func (r Record) Label() (int, bool) {
	if _, ok := r.Status(); !ok {
		return 0, false
	}
	if r.IsActive() {
		return 0, true
	}
	return 1, true
}

// ApplyLabel sets the terminated field when the status field exists in the
// record set. A record missing its own status counts as not active. When no
// record has a status nothing is labeled, so training fails on the missing
// label instead of seeing a single class.
func ApplyLabel(records []Record) bool {
	present := false
	for _, r := range records {
		if r.Has(FieldEmploymentStatus) {
			present = true
			break
		}
	}
	if !present {
		return false
	}

	for _, r := range records {
		if label, ok := r.Label(); ok {
			r[FieldTerminated] = label
		} else {
			r[FieldTerminated] = 1
		}
	}
	return true
}

// AsFloat converts numeric values (and bools) to float64.
func AsFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
