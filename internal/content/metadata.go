package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SetMetadata stores a key/value pair against a record. With unique set, the
// write is skipped when the record already carries the key; otherwise the
// value is appended, allowing repeated keys.
func (s *Store) SetMetadata(ctx context.Context, recordID int64, key, value string, unique bool) error {
	if key == "" {
		return errors.New("metadata key is required")
	}

	if unique {
		var existing int64
		err := s.db.QueryRowContext(
			ctx,
			`SELECT id FROM record_meta WHERE record_id = ? AND meta_key = ? LIMIT 1`,
			recordID,
			key,
		).Scan(&existing)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check metadata: %w", err)
		}
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO record_meta (record_id, meta_key, meta_value) VALUES (?, ?, ?)`,
		recordID,
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %q: %w", key, err)
	}
	return nil
}

// ReplaceMetadata overwrites all values of a key with a single value.
func (s *Store) ReplaceMetadata(ctx context.Context, recordID int64, key, value string) error {
	if key == "" {
		return errors.New("metadata key is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin metadata replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM record_meta WHERE record_id = ? AND meta_key = ?`,
		recordID,
		key,
	); err != nil {
		return fmt.Errorf("clear metadata %q: %w", key, err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO record_meta (record_id, meta_key, meta_value) VALUES (?, ?, ?)`,
		recordID,
		key,
		value,
	); err != nil {
		return fmt.Errorf("replace metadata %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit metadata replace: %w", err)
	}
	return nil
}

// MetadataValues returns all values stored for a key on a record, in insertion
// order. An empty slice means the key is absent.
func (s *Store) MetadataValues(ctx context.Context, recordID int64, key string) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT meta_value FROM record_meta WHERE record_id = ? AND meta_key = ? ORDER BY id`,
		recordID,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("query metadata %q: %w", key, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

// MetadataValue returns the first value stored for a key, or "" when absent.
func (s *Store) MetadataValue(ctx context.Context, recordID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT meta_value FROM record_meta WHERE record_id = ? AND meta_key = ? ORDER BY id LIMIT 1`,
		recordID,
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query metadata %q: %w", key, err)
	}
	return value, nil
}

// FindByMetadata returns the record carrying a key/value pair, or nil when no
// record matches. When several match, the oldest record wins.
func (s *Store) FindByMetadata(ctx context.Context, key, value string) (*Record, error) {
	if key == "" {
		return nil, errors.New("metadata key is required")
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM records
         WHERE id = (SELECT record_id FROM record_meta
                     WHERE meta_key = ? AND meta_value = ?
                     ORDER BY record_id LIMIT 1)`,
		key,
		value,
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find record by metadata %q: %w", key, err)
	}
	return record, nil
}

// Metadata returns every key/value pair stored on a record.
func (s *Store) Metadata(ctx context.Context, recordID int64) (map[string][]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT meta_key, meta_value FROM record_meta WHERE record_id = ? ORDER BY id`,
		recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string][]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		meta[key] = append(meta[key], value)
	}
	return meta, rows.Err()
}
