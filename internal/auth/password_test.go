package auth

import (
	"strings"
	"testing"

	"sales-flow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, h.Verify(hash, "password123"))
	assert.False(t, h.Verify(hash, "Password123"))
	assert.False(t, h.Verify("", "password123"))
}

func TestHashRejectsEmpty(t *testing.T) {
	_, err := NewHasher(bcrypt.MinCost).Hash("")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	hash, err := h.Hash(strings.Repeat("x", MaxPasswordBytes))
	require.NoError(t, err)
	assert.True(t, h.Verify(hash, strings.Repeat("x", MaxPasswordBytes)))
}

func TestNewHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).cost)
	assert.Equal(t, 12, NewHasher(12).cost)
}
