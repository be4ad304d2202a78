package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/Veraticus/hr-attrition/internal/model"
)

// SaveRecords inserts records into a collection and returns how many were stored.
func (s *SQLiteStorage) SaveRecords(ctx context.Context, collection string, records []model.Record) (int, error) {
	// Validate inputs
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(collection, "collection"); err != nil {
		return 0, err
	}
	if err := validateRecords(records); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, unreachable("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertRecords(ctx, tx, normalizeCollection(collection), records); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit records: %w", err)
	}

	return len(records), nil
}

// ReplaceRecords swaps the whole content of a collection for records in one
// transaction. On any failure the previous content is left untouched.
// It returns how many records were removed.
func (s *SQLiteStorage) ReplaceRecords(ctx context.Context, collection string, records []model.Record) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(collection, "collection"); err != nil {
		return 0, err
	}
	if err := validateRecords(records); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, unreachable("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	coll := normalizeCollection(collection)
	result, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, coll)
	if err != nil {
		return 0, fmt.Errorf("failed to clear collection: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted records: %w", err)
	}

	if err := insertRecords(ctx, tx, coll, records); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit records: %w", err)
	}

	return int(removed), nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, coll string, records []model.Record) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, associate_id, associate_name, document, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		doc, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, coll, nullable(r.ID()), nullable(r.Name()), string(doc)); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}
	return nil
}

// GetRecords returns every record in a collection in insertion order.
func (s *SQLiteStorage) GetRecords(ctx context.Context, collection string) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document FROM records
		WHERE collection = ?
		ORDER BY id
	`, normalizeCollection(collection))
	if err != nil {
		return nil, unreachable("failed to query records", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]model.Record, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r, err := decodeRecord(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, unreachable("failed to read records", err)
	}

	return records, nil
}

// FindRecord looks a record up by exact name, then case-insensitive name,
// then associate id. It returns common.ErrNotFound when nothing matches.
func (s *SQLiteStorage) FindRecord(ctx context.Context, collection, key string) (model.Record, error) {
	_, r, err := s.findRecord(ctx, collection, key)
	return r, err
}

func (s *SQLiteStorage) findRecord(ctx context.Context, collection, key string) (int64, model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return 0, nil, err
	}
	if err := validateString(key, "key"); err != nil {
		return 0, nil, err
	}

	coll := normalizeCollection(collection)
	queries := []string{
		`SELECT id, document FROM records WHERE collection = ? AND associate_name = ? ORDER BY id LIMIT 1`,
		`SELECT id, document FROM records WHERE collection = ? AND LOWER(associate_name) = LOWER(?) ORDER BY id LIMIT 1`,
		`SELECT id, document FROM records WHERE collection = ? AND associate_id = ? ORDER BY id LIMIT 1`,
	}

	for _, query := range queries {
		var (
			id  int64
			doc string
		)
		err := s.db.QueryRowContext(ctx, query, coll, strings.TrimSpace(key)).Scan(&id, &doc)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return 0, nil, unreachable("failed to query record", err)
		}
		r, err := decodeRecord(doc)
		if err != nil {
			return 0, nil, err
		}
		return id, r, nil
	}

	return 0, nil, fmt.Errorf("%w: %s", common.ErrNotFound, key)
}

// UpdateRecord merges fields into the matching record. A nil value removes
// the field.
func (s *SQLiteStorage) UpdateRecord(ctx context.Context, collection, key string, fields model.Record) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: fields", ErrEmptySlice)
	}

	id, current, err := s.findRecord(ctx, collection, key)
	if err != nil {
		return err
	}

	for field, v := range fields {
		if v == nil {
			delete(current, field)
			continue
		}
		current[field] = v
	}
	if err := validateRecord(current); err != nil {
		return err
	}

	doc, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE records
		SET document = ?, associate_id = ?, associate_name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(doc), nullable(current.ID()), nullable(current.Name()), id)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	return nil
}

// DeleteRecord removes the matching record.
func (s *SQLiteStorage) DeleteRecord(ctx context.Context, collection, key string) error {
	id, _, err := s.findRecord(ctx, collection, key)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// DeleteCollection removes every record in a collection and returns the count.
func (s *SQLiteStorage) DeleteCollection(ctx context.Context, collection string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, normalizeCollection(collection))
	if err != nil {
		return 0, fmt.Errorf("failed to delete collection: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted records: %w", err)
	}
	return int(n), nil
}

// CountRecords returns the number of records in a collection.
func (s *SQLiteStorage) CountRecords(ctx context.Context, collection string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE collection = ?`,
		normalizeCollection(collection)).Scan(&count)
	if err != nil {
		return 0, unreachable("failed to count records", err)
	}
	return count, nil
}

// RecordNames returns the sorted distinct associate names in a collection.
func (s *SQLiteStorage) RecordNames(ctx context.Context, collection string) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT associate_name FROM records
		WHERE collection = ? AND associate_name IS NOT NULL AND associate_name != ''
	`, normalizeCollection(collection))
	if err != nil {
		return nil, unreachable("failed to query names", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, unreachable("failed to read names", err)
	}

	sort.Strings(names)
	return names, nil
}

func decodeRecord(doc string) (model.Record, error) {
	var r model.Record
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("failed to decode record document: %w", err)
	}
	if r == nil {
		r = model.Record{}
	}
	return r, nil
}

func nullable(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
