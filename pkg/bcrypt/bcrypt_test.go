package bcrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	b := NewWithCost(0)

	hash, err := b.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, b.ComparePassword(hash, "secret1"))
	assert.ErrorIs(t, b.ComparePassword(hash, "secret2"), ErrMismatch)
	assert.Error(t, b.ComparePassword("not-a-hash", "secret1"))
}
