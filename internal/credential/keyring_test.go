package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemoryKeyring(t *testing.T) {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	prev := open
	open = func() (keyring.Keyring, error) { return ring, nil }
	t.Cleanup(func() { open = prev })
}

func TestSetGetDelete(t *testing.T) {
	useMemoryKeyring(t)

	require.NoError(t, Set(TokenKey, "secret"))
	got, err := Get(TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "secret", got)

	require.NoError(t, Delete(TokenKey))
	_, err = Get(TokenKey)
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)

	assert.NoError(t, Delete(TokenKey), "deleting a missing key is fine")
}

func TestToken_EnvWins(t *testing.T) {
	useMemoryKeyring(t)
	require.NoError(t, Set(TokenKey, "from-keyring"))
	t.Setenv(TokenEnv, " from-env ")

	tok, err := Token()
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok)
}

func TestToken_FallsBackToKeyring(t *testing.T) {
	useMemoryKeyring(t)
	t.Setenv(TokenEnv, "")
	require.NoError(t, Set(TokenKey, "from-keyring\n"))

	tok, err := Token()
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", tok)
}

func TestToken_MissingIsEmpty(t *testing.T) {
	useMemoryKeyring(t)
	t.Setenv(TokenEnv, "")

	tok, err := Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}
