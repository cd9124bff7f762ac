package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStore(keyring.NewArrayKeyring(nil))

	_, err := s.Get(TelegramTokenKey)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(TelegramTokenKey, "123:abc"))
	got, err := s.Get(TelegramTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "123:abc", got)

	require.NoError(t, s.Delete(TelegramTokenKey))
	_, err = s.Get(TelegramTokenKey)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Delete(TelegramTokenKey))
}

func TestSetRejectsEmpty(t *testing.T) {
	t.Parallel()

	s := NewStore(keyring.NewArrayKeyring(nil))
	assert.Error(t, s.Set(TelegramTokenKey, ""))
}
