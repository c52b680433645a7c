package content

import (
	"context"
	"database/sql"
	"fmt"
)

// Journal step names recorded during ingestion.
const (
	StepSessionCreated  = "session_created"
	StepSessionUpdated  = "session_updated"
	StepTermsAssigned   = "terms_assigned"
	StepSpeakerCreated  = "speaker_created"
	StepSpeakerLinked   = "speaker_linked"
	StepImageAttached   = "image_attached"
	StepIngestCompleted = "ingest_completed"
)

// Journal records a committed sub-write for a submission. The journal is the
// compensating-action log: after a partial failure it shows exactly which
// writes reached the store.
func (s *Store) Journal(ctx context.Context, submissionID, step string, recordID int64, detail string) error {
	if submissionID == "" || step == "" {
		return fmt.Errorf("journal entry requires submission id and step")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO ingest_journal (submission_id, step, record_id, detail, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		submissionID,
		step,
		nullableInt64(recordID),
		nullableString(detail),
		timestamp(),
	)
	if err != nil {
		return fmt.Errorf("journal %s: %w", step, err)
	}
	return nil
}

// JournalEntries returns the recorded sub-writes for a submission in order.
func (s *Store) JournalEntries(ctx context.Context, submissionID string) ([]JournalEntry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, submission_id, step, record_id, detail, created_at
         FROM ingest_journal WHERE submission_id = ? ORDER BY id`,
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var (
			entry      JournalEntry
			recordID   sql.NullInt64
			detail     sql.NullString
			createdRaw sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.SubmissionID, &entry.Step, &recordID, &detail, &createdRaw); err != nil {
			return nil, err
		}
		entry.RecordID = recordID.Int64
		entry.Detail = detail.String
		if created, err := parseTimeString(createdRaw.String); err == nil {
			entry.CreatedAt = created
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
