package sealer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = strings.Repeat("ab", 32)

func TestNew(t *testing.T) {
	_, err := New(testKey)
	require.NoError(t, err)

	_, err = New("abcd")
	assert.Equal(t, ErrInvalidKey, err)

	_, err = New(strings.Repeat("zz", 32))
	assert.Equal(t, ErrInvalidKey, err)
}

func TestSealOpen(t *testing.T) {
	s, err := New(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal("bearer-token-value")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "bearer-token-value")

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "bearer-token-value", opened)

	// Nonces differ between seals
	again, err := s.Seal("bearer-token-value")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again)
}

func TestSealOpen_Empty(t *testing.T) {
	s, err := New(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	opened, err := s.Open("")
	require.NoError(t, err)
	assert.Empty(t, opened)
}

func TestOpen_WrongKey(t *testing.T) {
	s, err := New(testKey)
	require.NoError(t, err)
	other, err := New(strings.Repeat("cd", 32))
	require.NoError(t, err)

	sealed, err := s.Seal("secret")
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.Equal(t, ErrCorrupt, err)

	_, err = s.Open("not base64 !!")
	assert.Equal(t, ErrCorrupt, err)
}
