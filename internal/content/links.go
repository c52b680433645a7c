package content

import (
	"context"
	"fmt"
)

// LinkSpeaker appends a speaker to a session's ordered speaker list. Linking
// the same speaker twice is a silent no-op; the ordering of first links is
// preserved.
func (s *Store) LinkSpeaker(ctx context.Context, sessionID, speakerID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin link: %w", err)
	}
	defer tx.Rollback()

	var position int
	if err := tx.QueryRowContext(
		ctx,
		`SELECT COALESCE(MAX(position), 0) FROM record_links WHERE session_record_id = ?`,
		sessionID,
	).Scan(&position); err != nil {
		return fmt.Errorf("next link position: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO record_links (session_record_id, speaker_record_id, position)
         VALUES (?, ?, ?)`,
		sessionID,
		speakerID,
		position+1,
	); err != nil {
		return fmt.Errorf("link speaker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit link: %w", err)
	}
	return nil
}

// Speakers returns the speaker record ids linked to a session, in link order.
func (s *Store) Speakers(ctx context.Context, sessionID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT speaker_record_id FROM record_links WHERE session_record_id = ? ORDER BY position`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query speakers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Sessions returns the session record ids a speaker is linked to. Speakers may
// present more than one session over their lifetime.
func (s *Store) Sessions(ctx context.Context, speakerID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT session_record_id FROM record_links WHERE speaker_record_id = ? ORDER BY session_record_id`,
		speakerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
