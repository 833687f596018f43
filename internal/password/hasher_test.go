package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hasher := NewHasher()

	hash, err := hasher.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, hasher.Compare(hash, "hunter22"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong"), ErrMismatch)
}

func TestHashesAreSalted(t *testing.T) {
	hasher := NewHasher()

	first, err := hasher.Hash("hunter22")
	require.NoError(t, err)
	second, err := hasher.Hash("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
