package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/Veraticus/hr-attrition/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssociateBuilder(t *testing.T) {
	records := NewAssociateBuilder().
		WithField(model.FieldCountry, "US").
		WithActive(2, DepartmentIT).
		WithLeavers(1, DepartmentSales).
		WithRecord(model.Record{model.FieldAssociateName: "Solo"}).
		Build()

	require.Len(t, records, 4)
	assert.Equal(t, "A0001", records[0].ID())
	assert.Equal(t, "Active 1", records[0].Name())
	assert.True(t, records[0].IsActive())
	assert.Equal(t, "US", records[1][model.FieldCountry])
	assert.Equal(t, "Leaver 3", records[2].Name())
	assert.False(t, records[2].IsActive())
	assert.Equal(t, DepartmentSales, records[2].Department())
	assert.Equal(t, "Solo", records[3].Name())
}

func TestSetupTestDB(t *testing.T) {
	db := SetupTestDB(t, NewAssociateBuilder().WithActive(2, DepartmentIT).Build()...)

	count, err := db.Storage.CountRecords(context.Background(), DefaultCollection)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "Active 2", db.MustFind("A0002").Name())
}

func TestSetupTestDBWithOptions(t *testing.T) {
	called := false
	db := SetupTestDBWithOptions(t, TestDBOptions{
		Collection: "managers",
		Records:    NewAssociateBuilder().WithActive(1, DepartmentOffice).Build(),
		CustomSetup: func(ctx context.Context, s *storage.SQLiteStorage) error {
			called = true
			_, err := s.SaveRecords(ctx, "managers", []model.Record{{model.FieldAssociateName: "Extra"}})
			return err
		},
	})

	assert.True(t, called)
	assert.Equal(t, "managers", db.Collection)

	names, err := db.Storage.RecordNames(context.Background(), "managers")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Active 1", "Extra"}, names)
}
