package memory

import (
	"context"
	"sort"
	"sync"

	"account-directory/internal/domain"
	"account-directory/internal/repository"
)

// AccountRepository keeps accounts in process memory, guarded by a mutex.
// Useful for tests and single-instance deployments without a database file.
type AccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	order    []string // usernames in insertion order
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]*domain.Account)}
}

func (r *AccountRepository) Init(ctx context.Context) error {
	return nil
}

func (r *AccountRepository) InsertIfAbsent(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.Username]; exists {
		return repository.ErrDuplicateUsername
	}
	stored := *account
	r.accounts[account.Username] = &stored
	r.order = append(r.order, account.Username)
	return nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	account := *stored
	return &account, nil
}

func (r *AccountRepository) UpdateHash(ctx context.Context, username, expectedHash, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[username]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.PasswordHash != expectedHash {
		return repository.ErrStaleHash
	}
	stored.PasswordHash = newHash
	return nil
}

func (r *AccountRepository) ListAll(ctx context.Context) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := make([]domain.Account, 0, len(r.order))
	for _, username := range r.order {
		accounts = append(accounts, *r.accounts[username])
	}
	// stable sort keeps insertion order for equal timestamps
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}
