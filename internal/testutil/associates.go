package testutil

import (
	"fmt"

	"github.com/Veraticus/hr-attrition/internal/model"
)

// Fixture values.
const (
	StatusActive     = "Active"
	StatusVoluntary  = "Voluntarily Terminated"
	StatusForCause   = "Terminated for Cause"
	DepartmentIT     = "IT"
	DepartmentSales  = "Sales"
	DepartmentOffice = "Admin Offices"
)

// AssociateBuilder assembles associate records for tests. Active associates
// get low absence counts and leavers high ones, so the two groups are
// separable by a linear model.
type AssociateBuilder struct {
	records []model.Record
	shared  model.Record
	next    int
}

// NewAssociateBuilder creates an empty builder.
func NewAssociateBuilder() *AssociateBuilder {
	return &AssociateBuilder{shared: model.Record{}, next: 1}
}

// WithField sets a field on every record built after this call.
func (b *AssociateBuilder) WithField(field string, value any) *AssociateBuilder {
	b.shared[field] = value
	return b
}

// WithActive adds n active associates in department.
func (b *AssociateBuilder) WithActive(n int, department string) *AssociateBuilder {
	for i := 0; i < n; i++ {
		b.add("Active", StatusActive, department, i+1)
	}
	return b
}

// WithLeavers adds n voluntarily terminated associates in department.
func (b *AssociateBuilder) WithLeavers(n int, department string) *AssociateBuilder {
	for i := 0; i < n; i++ {
		b.add("Leaver", StatusVoluntary, department, i+10)
	}
	return b
}

// WithRecord adds a record as is.
func (b *AssociateBuilder) WithRecord(r model.Record) *AssociateBuilder {
	b.records = append(b.records, r)
	return b
}

func (b *AssociateBuilder) add(prefix, status, department string, absences int) {
	r := model.Record{
		model.FieldAssociateID:      fmt.Sprintf("A%04d", b.next),
		model.FieldAssociateName:    fmt.Sprintf("%s %d", prefix, b.next),
		model.FieldEmploymentStatus: status,
		model.FieldDepartment:       department,
		model.FieldAbsences:         absences,
	}
	for k, v := range b.shared {
		r[k] = v
	}
	b.records = append(b.records, r)
	b.next++
}

// Build returns the assembled records.
func (b *AssociateBuilder) Build() []model.Record {
	out := make([]model.Record, len(b.records))
	copy(out, b.records)
	return out
}
