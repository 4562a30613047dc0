package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, CheckPassword(hash, "correct horse battery"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong password"), ErrPasswordMismatch)
	assert.ErrorIs(t, CheckPassword("", "anything"), ErrPasswordMismatch)
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("a", 73)), ErrPasswordTooLong)
	assert.NoError(t, ValidatePassword("exactly8"))

	_, err := HashPassword("short")
	assert.True(t, errors.Is(err, ErrPasswordTooShort))
}

func TestGenerateAccessCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := GenerateAccessCode()
		require.NoError(t, err)
		require.Len(t, code, AccessCodeLength)
		for _, r := range code {
			assert.Contains(t, accessCodeAlphabet, string(r))
		}
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 45)
}

func TestNormalizeAccessCode(t *testing.T) {
	code, err := NormalizeAccessCode("  festa2024 ")
	require.NoError(t, err)
	assert.Equal(t, "FESTA2024", code)

	_, err = NormalizeAccessCode("ab")
	assert.ErrorIs(t, err, ErrInvalidAccessCode)
	_, err = NormalizeAccessCode("FESTA 2024")
	assert.ErrorIs(t, err, ErrInvalidAccessCode)
}
