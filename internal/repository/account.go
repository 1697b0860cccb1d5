package repository

import (
	"context"
	"errors"

	"account-directory/internal/domain"
)

var (
	// ErrNotFound is returned when no account exists for the given username.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateUsername is returned when the username is already bound to an account.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrStaleHash is returned by UpdateHash when the stored hash no longer matches
	// the expected one, e.g. a concurrent rotation won.
	ErrStaleHash = errors.New("stored hash changed")
)

// AccountRepository defines persistence operations for Account entities.
//
// InsertIfAbsent and UpdateHash are the only mutations; both are atomic with
// respect to concurrent calls on the same username.
type AccountRepository interface {
	Init(ctx context.Context) error
	InsertIfAbsent(ctx context.Context, account *domain.Account) error
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	// UpdateHash replaces the stored password hash only if it still equals
	// expectedHash (compare-and-swap on the single record).
	UpdateHash(ctx context.Context, username, expectedHash, newHash string) error
	// ListAll returns every account ordered by creation time descending,
	// ties broken by insertion order.
	ListAll(ctx context.Context) ([]domain.Account, error)
}
