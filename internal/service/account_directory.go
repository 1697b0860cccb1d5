package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"account-directory/internal/domain"
	"account-directory/internal/repository"
)

var (
	// ErrInvalidInput indicates missing or empty request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUsernameTaken is returned when attempting to create an account with an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	// It deliberately covers both an unknown username and a wrong password so
	// callers cannot probe for account existence through login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound indicates the referenced account does not exist.
	ErrNotFound = errors.New("account not found")
	// ErrWrongPassword indicates the current password did not match during rotation.
	ErrWrongPassword = errors.New("current password is incorrect")
)

// AccountDirectory owns the username→account mapping: it enforces uniqueness,
// verifies credentials, and rotates password hashes atomically.
type AccountDirectory interface {
	Create(ctx context.Context, username, displayName, password string) (*domain.Account, error)
	Authenticate(ctx context.Context, username, password string) (*domain.Account, error)
	RotateCredential(ctx context.Context, username, currentPassword, newPassword string) error
	Lookup(ctx context.Context, username string) (*domain.Account, error)
	LookupAll(ctx context.Context) ([]domain.Account, error)
}

type accountDirectory struct {
	accounts repository.AccountRepository
	hasher   PasswordHasher
}

func NewAccountDirectory(accounts repository.AccountRepository, hasher PasswordHasher) AccountDirectory {
	return &accountDirectory{
		accounts: accounts,
		hasher:   hasher,
	}
}

func (d *accountDirectory) Create(ctx context.Context, username, displayName, password string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)
	if username == "" || displayName == "" || password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := d.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := d.accounts.InsertIfAbsent(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return sanitizeAccount(account), nil
}

func (d *accountDirectory) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	account, err := d.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// same error as a wrong password on purpose
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !d.hasher.Verify(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return sanitizeAccount(account), nil
}

func (d *accountDirectory) RotateCredential(ctx context.Context, username, currentPassword, newPassword string) error {
	username = strings.TrimSpace(username)
	if username == "" || currentPassword == "" || newPassword == "" {
		return ErrInvalidInput
	}

	account, err := d.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("rotate credential: %w", err)
	}

	if !d.hasher.Verify(currentPassword, account.PasswordHash) {
		return ErrWrongPassword
	}

	newHash, err := d.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	// swap only against the hash we just verified; a concurrent rotation
	// that landed in between is treated as a credential mismatch
	if err := d.accounts.UpdateHash(ctx, username, account.PasswordHash, newHash); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrNotFound
		case errors.Is(err, repository.ErrStaleHash):
			return ErrWrongPassword
		}
		return fmt.Errorf("rotate credential: %w", err)
	}
	return nil
}

func (d *accountDirectory) Lookup(ctx context.Context, username string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidInput
	}

	account, err := d.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return sanitizeAccount(account), nil
}

func (d *accountDirectory) LookupAll(ctx context.Context) ([]domain.Account, error) {
	accounts, err := d.accounts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	sanitized := make([]domain.Account, len(accounts))
	for i := range accounts {
		sanitized[i] = *sanitizeAccount(&accounts[i])
	}
	return sanitized, nil
}

func sanitizeAccount(account *domain.Account) *domain.Account {
	if account == nil {
		return nil
	}
	return &domain.Account{
		ID:          account.ID,
		Username:    account.Username,
		DisplayName: account.DisplayName,
		CreatedAt:   account.CreatedAt,
	}
}
