package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndCheck(t *testing.T) {
	h, err := NewPasswordHasher(0)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.Cost())

	hash, err := h.Hash("longenough1")
	require.NoError(t, err)
	assert.NotEqual(t, "longenough1", hash)

	assert.True(t, h.Check("longenough1", hash))
	assert.False(t, h.Check("wrong", hash))
	assert.False(t, h.Check("", hash))
	assert.False(t, h.Check("longenough1", "not-a-bcrypt-hash"))
}

func TestPasswordHasher_Salted(t *testing.T) {
	h, err := NewPasswordHasher(10)
	require.NoError(t, err)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	cost, err := bcrypt.Cost([]byte(a))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestNewPasswordHasher_CostRange(t *testing.T) {
	_, err := NewPasswordHasher(4)
	assert.Error(t, err)
	_, err = NewPasswordHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)

	h, err := NewPasswordHasher(11)
	require.NoError(t, err)
	assert.Equal(t, 11, h.Cost())
}

func TestPasswordHasher_TooLong(t *testing.T) {
	h, err := NewPasswordHasher(10)
	require.NoError(t, err)
	_, err = h.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
