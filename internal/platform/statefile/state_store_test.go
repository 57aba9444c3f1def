package statefile_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/phrazzld/deckpack/internal/platform/statefile"
	"github.com/phrazzld/deckpack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...statefile.Option) (*statefile.FileStateStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "state")
	s, err := statefile.NewFileStateStore(dir, slog.New(slog.DiscardHandler), opts...)
	require.NoError(t, err)
	return s, dir
}

func TestFileStateStore_LoadMissing(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t)

	_, err := s.Load(context.Background(), "decks")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrStateNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestFileStateStore_RoundTripVerbatim(t *testing.T) {
	t.Parallel()
	s, dir := newStore(t)
	ctx := context.Background()

	doc := []byte("[ {\"topic\":\"Birds\",  \"id\":\"x\"} ]\n")
	require.NoError(t, s.Save(ctx, "decks", doc))

	got, err := s.Load(ctx, "decks")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	onDisk, err := os.ReadFile(filepath.Join(dir, "decks.json"))
	require.NoError(t, err)
	assert.Equal(t, doc, onDisk)

	require.NoError(t, s.Save(ctx, "decks", []byte("[]")))
	got, err = s.Load(ctx, "decks")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	// No temp files are left behind.
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStateStore_InvalidKey(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "..", "../decks", "a/b"} {
		assert.ErrorIs(t, s.Save(ctx, key, []byte("[]")), store.ErrInvalidEntity, key)
		_, err := s.Load(ctx, key)
		assert.ErrorIs(t, err, store.ErrInvalidEntity, key)
	}
}

func TestFileStateStore_LockedByAnotherWriter(t *testing.T) {
	t.Parallel()
	s, dir := newStore(t, statefile.WithLockTimeout(100*time.Millisecond))

	other := flock.New(filepath.Join(dir, "decks.lock"))
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	t.Cleanup(func() { _ = other.Unlock() })

	err = s.Save(context.Background(), "decks", []byte("[]"))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrLocked)

	_, err = s.Load(context.Background(), "decks")
	assert.ErrorIs(t, err, store.ErrStateNotFound)
}

func TestNewFileStateStore_EmptyDir(t *testing.T) {
	t.Parallel()
	_, err := statefile.NewFileStateStore("", nil)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}
