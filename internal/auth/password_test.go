package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Tests use bcrypt.MinCost so hashing stays fast.

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("Abcdef12")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "Abcdef12", "hash must not contain the plaintext")

	ok, err := h.Verify("Abcdef12", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasher_VerifyMismatchIsNotAnError(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("Abcdef12")
	require.NoError(t, err)

	ok, err := h.Verify("Abcdef12x", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_HashEmptyPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash("")
	assert.Error(t, err)
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Verify("Abcdef12", "not-a-bcrypt-hash")
	assert.Error(t, err)
}

func TestHasher_HashesAreSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	h1, err := h.Hash("Abcdef12")
	require.NoError(t, err)
	h2, err := h.Hash("Abcdef12")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "two hashes of the same password must differ by salt")
}

func TestNewHasher_ClampsInvalidCost(t *testing.T) {
	h := NewHasher(1000)

	hash, err := h.Hash("Abcdef12")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}
