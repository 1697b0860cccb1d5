package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-directory/internal/domain"
	"account-directory/internal/repository"
)

func newAccount(username string, createdAt time.Time) *domain.Account {
	return &domain.Account{
		ID:           "id-" + username,
		Username:     username,
		DisplayName:  "User " + username,
		PasswordHash: "hash-" + username,
		CreatedAt:    createdAt,
	}
}

func TestInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	require.NoError(t, repo.Init(ctx))

	require.NoError(t, repo.InsertIfAbsent(ctx, newAccount("alice", time.Now())))

	err := repo.InsertIfAbsent(ctx, newAccount("alice", time.Now()))
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)
}

func TestGetByUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	want := newAccount("alice", time.Now())
	require.NoError(t, repo.InsertIfAbsent(ctx, want))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.PasswordHash, got.PasswordHash)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetByUsernameReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	require.NoError(t, repo.InsertIfAbsent(ctx, newAccount("alice", time.Now())))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	got.PasswordHash = "mutated"

	again, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash-alice", again.PasswordHash)
}

func TestUpdateHash(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	require.NoError(t, repo.InsertIfAbsent(ctx, newAccount("alice", time.Now())))

	require.NoError(t, repo.UpdateHash(ctx, "alice", "hash-alice", "hash-2"))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", got.PasswordHash)

	assert.ErrorIs(t, repo.UpdateHash(ctx, "alice", "hash-alice", "hash-3"), repository.ErrStaleHash)
	assert.ErrorIs(t, repo.UpdateHash(ctx, "nobody", "x", "y"), repository.ErrNotFound)
}

func TestListAllOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.InsertIfAbsent(ctx, newAccount("a", base)))
	require.NoError(t, repo.InsertIfAbsent(ctx, newAccount("b", base.Add(time.Second))))
	require.NoError(t, repo.InsertIfAbsent(ctx, newAccount("c", base.Add(2*time.Second))))

	accounts, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "c", accounts[0].Username)
	assert.Equal(t, "b", accounts[1].Username)
	assert.Equal(t, "a", accounts[2].Username)
}

func TestListAllTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.InsertIfAbsent(ctx, newAccount("first", at)))
	require.NoError(t, repo.InsertIfAbsent(ctx, newAccount("second", at)))

	accounts, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "first", accounts[0].Username)
	assert.Equal(t, "second", accounts[1].Username)
}

func TestConcurrentInsertSameUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	const n = 32
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account := newAccount("alice", time.Now())
			account.ID = fmt.Sprintf("id-%d", i)
			errs[i] = repo.InsertIfAbsent(ctx, account)
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, repository.ErrDuplicateUsername)
		}
	}
	assert.Equal(t, 1, succeeded)
}
