package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AttachImage stores image data against a record and marks it as the record's
// representative image.
func (s *Store) AttachImage(ctx context.Context, recordID int64, fileName, contentType string, data []byte) (int64, error) {
	if fileName == "" {
		return 0, errors.New("attachment file name is required")
	}
	if len(data) == 0 {
		return 0, errors.New("attachment data is empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin attach: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO attachments (record_id, file_name, content_type, data, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		recordID,
		fileName,
		nullableString(contentType),
		data,
		timestamp(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert attachment: %w", err)
	}
	attachmentID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE records SET image_id = ?, updated_at = ? WHERE id = ?`,
		attachmentID,
		timestamp(),
		recordID,
	); err != nil {
		return 0, fmt.Errorf("set representative image: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit attach: %w", err)
	}
	return attachmentID, nil
}

// GetAttachment fetches an attachment by identifier. Returns nil when absent.
func (s *Store) GetAttachment(ctx context.Context, id int64) (*Attachment, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, record_id, file_name, content_type, data, created_at FROM attachments WHERE id = ?`,
		id,
	)

	var (
		attachment  Attachment
		contentType sql.NullString
		createdRaw  sql.NullString
	)
	err := row.Scan(
		&attachment.ID,
		&attachment.RecordID,
		&attachment.FileName,
		&contentType,
		&attachment.Data,
		&createdRaw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}

	attachment.ContentType = contentType.String
	if created, err := parseTimeString(createdRaw.String); err == nil {
		attachment.CreatedAt = created
	}
	return &attachment, nil
}
