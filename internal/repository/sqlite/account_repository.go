package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"account-directory/internal/domain"
	"account-directory/internal/repository"
)

// seq is a surrogate key so that ties on created_at keep insertion order.
const createAccountsTable = `
CREATE TABLE IF NOT EXISTS accounts (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAccountsTable); err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}
	return nil
}

func (r *AccountRepository) InsertIfAbsent(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO accounts (id, username, display_name, password_hash, created_at)
VALUES (?, ?, ?, ?, ?)`,
		account.ID,
		account.Username,
		account.DisplayName,
		account.PasswordHash,
		account.CreatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return repository.ErrDuplicateUsername
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, display_name, password_hash, created_at
FROM accounts
WHERE username = ?`,
		username,
	)
	return scanAccount(row)
}

func (r *AccountRepository) UpdateHash(ctx context.Context, username, expectedHash, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE accounts
SET password_hash = ?
WHERE username = ? AND password_hash = ?`,
		newHash,
		username,
		expectedHash,
	)
	if err != nil {
		return fmt.Errorf("update account hash: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account hash: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByUsername(ctx, username); err != nil {
			return err
		}
		return repository.ErrStaleHash
	}
	return nil
}

func (r *AccountRepository) ListAll(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, username, display_name, password_hash, created_at
FROM accounts
ORDER BY created_at DESC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.Username,
			&account.DisplayName,
			&account.PasswordHash,
			&account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func scanAccount(row interface {
	Scan(dest ...any) error
}) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.DisplayName,
		&account.PasswordHash,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &account, nil
}
