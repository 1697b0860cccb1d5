package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)
	assert.NotContains(t, hash, "pw1")

	assert.True(t, hasher.Verify("pw1", hash))
	assert.False(t, hasher.Verify("pw2", hash))
}

func TestBcryptHasherDistinctHashes(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("pw1")
	require.NoError(t, err)
	second, err := hasher.Hash("pw1")
	require.NoError(t, err)

	// salted, so two hashes of the same password differ
	assert.NotEqual(t, first, second)
}
