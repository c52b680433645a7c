package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const recordColumns = "id, record_type, title, body, status, submission_id, image_id, created_at, updated_at"

// InsertRecord creates a new content record and returns its identifier.
// The submission id may be empty for records created outside the intake flow.
func (s *Store) InsertRecord(ctx context.Context, recordType RecordType, title, body string, status Status, submissionID string) (int64, error) {
	if title == "" {
		return 0, errors.New("record title is required")
	}
	now := timestamp()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO records (record_type, title, body, status, submission_id, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(recordType),
		title,
		body,
		string(status),
		nullableString(submissionID),
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert %s record: %w", recordType, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// UpdateRecord applies the non-nil fields of update to an existing record.
func (s *Store) UpdateRecord(ctx context.Context, id int64, update RecordUpdate) error {
	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("record %d not found", id)
	}

	if update.Title != nil {
		record.Title = *update.Title
	}
	if update.Body != nil {
		record.Body = *update.Body
	}
	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.SubmissionID != nil {
		record.SubmissionID = *update.SubmissionID
	}

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE records SET title = ?, body = ?, status = ?, submission_id = ?, updated_at = ? WHERE id = ?`,
		record.Title,
		record.Body,
		string(record.Status),
		nullableString(record.SubmissionID),
		timestamp(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

// SetStatus moves a record to a new review status.
func (s *Store) SetStatus(ctx context.Context, id int64, status Status) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE records SET status = ?, updated_at = ? WHERE id = ?`,
		string(status),
		timestamp(),
		id,
	)
	if err != nil {
		return fmt.Errorf("set record status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record %d not found", id)
	}
	return nil
}

// GetRecord fetches a record by identifier. Returns nil when no record exists.
func (s *Store) GetRecord(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// FindBySubmission returns the first record of the given type that originated
// from the submission, or nil when the submission has not produced one.
// Storage errors are returned as-is and must not be treated as "not found".
func (s *Store) FindBySubmission(ctx context.Context, recordType RecordType, submissionID string) (*Record, error) {
	if submissionID == "" {
		return nil, errors.New("submission id is required")
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM records WHERE record_type = ? AND submission_id = ? ORDER BY id LIMIT 1`,
		string(recordType),
		submissionID,
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by submission: %w", err)
	}
	return record, nil
}

// ListRecords returns records of a type filtered by status set (or all records
// of the type when no status is provided), ordered by creation time.
func (s *Store) ListRecords(ctx context.Context, recordType RecordType, statuses ...Status) ([]*Record, error) {
	baseQuery := `SELECT ` + recordColumns + ` FROM records WHERE record_type = ?`
	orderClause := ` ORDER BY created_at, id`

	args := []any{string(recordType)}
	query := baseQuery
	if len(statuses) > 0 {
		query += ` AND status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += orderClause

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id           int64
		recordType   string
		title        string
		body         sql.NullString
		statusStr    string
		submissionID sql.NullString
		imageID      sql.NullInt64
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&recordType,
		&title,
		&body,
		&statusStr,
		&submissionID,
		&imageID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:           id,
		Type:         RecordType(recordType),
		Title:        title,
		Body:         body.String,
		Status:       Status(statusStr),
		SubmissionID: submissionID.String,
		ImageID:      imageID.Int64,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}
