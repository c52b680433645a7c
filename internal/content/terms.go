package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// FindOrCreateTerm resolves a classification term by name within a taxonomy,
// creating it when absent. Lookup-or-create keeps term creation idempotent
// across reprocessed submissions.
func (s *Store) FindOrCreateTerm(ctx context.Context, taxonomy, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if taxonomy == "" || name == "" {
		return 0, errors.New("taxonomy and term name are required")
	}

	var id int64
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id FROM terms WHERE taxonomy = ? AND name = ?`,
		taxonomy,
		name,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("find term: %w", err)
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO terms (taxonomy, name) VALUES (?, ?)`,
		taxonomy,
		name,
	)
	if err != nil {
		return 0, fmt.Errorf("create term: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// GetTerm fetches a term by identifier. Returns nil when no term exists.
func (s *Store) GetTerm(ctx context.Context, id int64) (*Term, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, taxonomy, name FROM terms WHERE id = ?`, id)
	var term Term
	err := row.Scan(&term.ID, &term.Taxonomy, &term.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get term: %w", err)
	}
	return &term, nil
}

// SetClassification assigns terms to a record. With replace, prior assignments
// in the same taxonomy are removed first; otherwise term ids are appended.
// Assigning an already-assigned term is a silent no-op.
func (s *Store) SetClassification(ctx context.Context, recordID int64, taxonomy string, termIDs []int64, replace bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin classification: %w", err)
	}
	defer tx.Rollback()

	if replace {
		_, err = tx.ExecContext(
			ctx,
			`DELETE FROM record_terms WHERE record_id = ?
             AND term_id IN (SELECT id FROM terms WHERE taxonomy = ?)`,
			recordID,
			taxonomy,
		)
		if err != nil {
			return fmt.Errorf("clear classification: %w", err)
		}
	}

	for _, termID := range termIDs {
		_, err = tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO record_terms (record_id, term_id) VALUES (?, ?)`,
			recordID,
			termID,
		)
		if err != nil {
			return fmt.Errorf("assign term %d: %w", termID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit classification: %w", err)
	}
	return nil
}

// Classification returns the terms assigned to a record within a taxonomy,
// ordered by term id.
func (s *Store) Classification(ctx context.Context, recordID int64, taxonomy string) ([]Term, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT terms.id, terms.taxonomy, terms.name FROM terms
         INNER JOIN record_terms ON record_terms.term_id = terms.id
         WHERE record_terms.record_id = ? AND terms.taxonomy = ?
         ORDER BY terms.id`,
		recordID,
		taxonomy,
	)
	if err != nil {
		return nil, fmt.Errorf("query classification: %w", err)
	}
	defer rows.Close()

	var terms []Term
	for rows.Next() {
		var term Term
		if err := rows.Scan(&term.ID, &term.Taxonomy, &term.Name); err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}
