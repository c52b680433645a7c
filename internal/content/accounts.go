package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// FindAccountByEmail looks up a registered account by email. Returns nil when
// no account matches. The match is case-insensitive.
func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.New("email is required")
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, email, display_name FROM accounts WHERE email = ? COLLATE NOCASE`,
		email,
	)
	var account Account
	err := row.Scan(&account.ID, &account.Email, &account.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

// CreateAccount registers an account used for informational speaker matching.
func (s *Store) CreateAccount(ctx context.Context, email, displayName string) (int64, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return 0, errors.New("email is required")
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO accounts (email, display_name) VALUES (?, ?)`,
		email,
		strings.TrimSpace(displayName),
	)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}
