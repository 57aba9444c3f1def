package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorUnwraps(t *testing.T) {
	t.Parallel()

	err := NewStoreError("file", "load", "decks", ErrStateNotFound)

	assert.True(t, IsNotFoundError(err))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, `file load of "decks" failed: entity not found: state document`, err.Error())
	assert.False(t, IsNotFoundError(NewStoreError("file", "save", "decks", ErrLocked)))
}

func TestValidateKey(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"decks", "decks.v2", "user-1_decks"} {
		assert.NoError(t, ValidateKey(key), key)
	}
	for _, key := range []string{"", ".", "..", "../etc/passwd", "a/b", "spaced key"} {
		assert.ErrorIs(t, ValidateKey(key), ErrInvalidEntity, key)
	}
}
