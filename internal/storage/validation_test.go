package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/hr-attrition/internal/model"
)

func TestValidateContext(t *testing.T) {
	if err := validateContext(context.Background()); err != nil {
		t.Errorf("validateContext() unexpected error = %v", err)
	}
	//nolint:staticcheck // testing nil context handling
	if err := validateContext(nil); !errors.Is(err, ErrNilContext) {
		t.Errorf("validateContext(nil) error = %v, want %v", err, ErrNilContext)
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		input   string
	}{
		{name: "valid", input: "associates"},
		{name: "empty", input: "", wantErr: ErrEmptyString},
		{name: "whitespace", input: " \t ", wantErr: ErrEmptyString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.input, "param")
			if tt.wantErr == nil && err != nil {
				t.Errorf("validateString() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("validateString() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		record  model.Record
		wantErr error
		name    string
	}{
		{name: "id only", record: model.Record{model.FieldAssociateID: "A1"}},
		{name: "name only", record: model.Record{model.FieldAssociateName: "Alice"}},
		{name: "numeric id", record: model.Record{model.FieldAssociateID: 1001.0}},
		{name: "nil", record: nil, wantErr: ErrNilParameter},
		{name: "blank identifiers", record: model.Record{model.FieldAssociateID: " ", model.FieldAssociateName: ""}, wantErr: ErrInvalidRecord},
		{name: "no identifiers", record: model.Record{model.FieldSalary: 100.0}, wantErr: ErrInvalidRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRecord(tt.record)
			if tt.wantErr == nil && err != nil {
				t.Errorf("validateRecord() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("validateRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
