package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, version, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, HashVersionBcrypt, version)
	assert.NotEmpty(t, hash)

	assert.NoError(t, VerifyPassword(hash, "correct horse battery"))
	assert.Error(t, VerifyPassword(hash, "wrong password"))
}

func TestHashPassword_TooShort(t *testing.T) {
	_, _, err := HashPassword("short")
	require.Error(t, err)
}
