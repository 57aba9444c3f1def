package statefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/phrazzld/deckpack/internal/store"
)

const (
	fileExt        = ".json"
	lockExt        = ".lock"
	lockRetryDelay = 25 * time.Millisecond
)

// FileStateStore implements store.StateStore with one file per key.
type FileStateStore struct {
	dir         string
	lockTimeout time.Duration
	logger      *slog.Logger
}

// Ensure FileStateStore implements store.StateStore interface
var _ store.StateStore = (*FileStateStore)(nil)

// Option configures a FileStateStore.
type Option func(*FileStateStore)

// WithLockTimeout bounds how long Save waits for another writer.
func WithLockTimeout(d time.Duration) Option {
	return func(s *FileStateStore) {
		s.lockTimeout = d
	}
}

// NewFileStateStore creates dir if needed and returns a store rooted there.
func NewFileStateStore(dir string, logger *slog.Logger, opts ...Option) (*FileStateStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: state directory cannot be empty", store.ErrInvalidEntity)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	s := &FileStateStore{
		dir:         dir,
		lockTimeout: 5 * time.Second,
		logger:      logger.With(slog.String("component", "state_store"), slog.String("backend", "file")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the file that holds key.
func (s *FileStateStore) Path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// Load implements store.StateStore.Load.
func (s *FileStateStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.NewStoreError("file", "load", key, store.ErrStateNotFound)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read state file", "key", key, "error", err)
		return nil, store.NewStoreError("file", "load", key, err)
	}
	return doc, nil
}

// Save implements store.StateStore.Save.
func (s *FileStateStore) Save(ctx context.Context, key string, doc []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(s.dir, key+lockExt))
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !locked {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		lockErr := store.ErrLocked
		if err != nil {
			lockErr = fmt.Errorf("%w: %v", store.ErrLocked, err)
		}
		return store.NewStoreError("file", "save", key, lockErr)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			s.logger.WarnContext(ctx, "failed to release state lock", "key", key, "error", unlockErr)
		}
	}()

	if err := writeAtomic(s.dir, s.Path(key), doc); err != nil {
		s.logger.ErrorContext(ctx, "failed to write state file", "key", key, "error", err)
		return store.NewStoreError("file", "save", key, err)
	}

	s.logger.DebugContext(ctx, "state saved", "key", key, "bytes", len(doc))
	return nil
}

func writeAtomic(dir, path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
