// Package testutil provides shared test fixtures: a migrated in-memory
// record store and a fluent builder for associate records.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/Veraticus/hr-attrition/internal/storage"
)

// DefaultCollection is the collection test records are seeded into.
const DefaultCollection = "associates"

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	Collection string
	Records    []model.Record
}

// SetupTestDB creates a new in-memory test database seeded with records.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewAssociateBuilder().
//			WithActive(3, "IT").
//			WithLeavers(3, "IT").
//			Build()...,
//	)
func SetupTestDB(t *testing.T, records ...model.Record) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Records: records})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, *storage.SQLiteStorage) error
	Collection     string
	Records        []model.Record
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	ctx := context.Background()

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	// Run migrations unless skipped
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Seed records
	if len(opts.Records) > 0 {
		if _, err := store.SaveRecords(ctx, opts.Collection, opts.Records); err != nil {
			t.Fatalf("failed to seed %d records: %v", len(opts.Records), err)
		}
	}

	// Run custom setup
	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage:    store,
		Collection: opts.Collection,
		Records:    opts.Records,
		t:          t,
	}
}

// MustFind returns the stored record for key or fails the test.
func (db *TestDB) MustFind(key string) model.Record {
	db.t.Helper()
	r, err := db.Storage.FindRecord(context.Background(), db.Collection, key)
	if err != nil {
		db.t.Fatalf("record %q not found: %v", key, err)
	}
	return r
}
