package content

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS records (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        record_type TEXT NOT NULL,
        title TEXT NOT NULL,
        body TEXT,
        status TEXT NOT NULL DEFAULT 'pending',
        submission_id TEXT,
        image_id INTEGER,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL
    )`,
	// One session per submission, enforced at the storage layer so that
	// concurrent duplicate submissions cannot both materialize.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_records_session_submission
        ON records (submission_id) WHERE record_type = 'session' AND submission_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_records_submission ON records (submission_id)`,
	`CREATE TABLE IF NOT EXISTS record_meta (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        record_id INTEGER NOT NULL REFERENCES records(id),
        meta_key TEXT NOT NULL,
        meta_value TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_record_meta_record ON record_meta (record_id, meta_key)`,
	`CREATE TABLE IF NOT EXISTS terms (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        taxonomy TEXT NOT NULL,
        name TEXT NOT NULL,
        UNIQUE (taxonomy, name)
    )`,
	`CREATE TABLE IF NOT EXISTS record_terms (
        record_id INTEGER NOT NULL REFERENCES records(id),
        term_id INTEGER NOT NULL REFERENCES terms(id),
        UNIQUE (record_id, term_id)
    )`,
	`CREATE TABLE IF NOT EXISTS record_links (
        session_record_id INTEGER NOT NULL REFERENCES records(id),
        speaker_record_id INTEGER NOT NULL REFERENCES records(id),
        position INTEGER NOT NULL,
        UNIQUE (session_record_id, speaker_record_id)
    )`,
	`CREATE TABLE IF NOT EXISTS accounts (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        email TEXT NOT NULL UNIQUE,
        display_name TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS attachments (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        record_id INTEGER NOT NULL REFERENCES records(id),
        file_name TEXT NOT NULL,
        content_type TEXT,
        data BLOB NOT NULL,
        created_at TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS ingest_journal (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        submission_id TEXT NOT NULL,
        step TEXT NOT NULL,
        record_id INTEGER,
        detail TEXT,
        created_at TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_journal_submission ON ingest_journal (submission_id)`,
}

func (s *Store) applyMigrations(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
