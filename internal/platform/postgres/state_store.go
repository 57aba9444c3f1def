package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/deckpack/internal/store"
)

// PostgresStateStore implements store.StateStore on the client_state table.
type PostgresStateStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure PostgresStateStore implements store.StateStore interface
var _ store.StateStore = (*PostgresStateStore)(nil)

// NewPostgresStateStore creates a state store on an open, migrated database.
// If logger is nil, the default logger is used.
func NewPostgresStateStore(db *sql.DB, logger *slog.Logger) *PostgresStateStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "state_store"), slog.String("backend", "postgres")),
	}
}

// Load implements store.StateStore.Load.
func (s *PostgresStateStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}

	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document::text FROM client_state WHERE key = $1`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NewStoreError("postgres", "load", key, store.ErrStateNotFound)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load state", "key", key, "error", err)
		return nil, store.NewStoreError("postgres", "load", key, MapError(err))
	}

	return []byte(doc), nil
}

// Save implements store.StateStore.Save. Every save bumps the row revision.
func (s *PostgresStateStore) Save(ctx context.Context, key string, doc []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	var revision int64
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		revision, err = upsertState(ctx, tx, key, doc)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save state", "key", key, "error", err)
		return store.NewStoreError("postgres", "save", key, MapError(err))
	}

	s.logger.DebugContext(ctx, "state saved",
		"key", key,
		"bytes", len(doc),
		"revision", revision)
	return nil
}

// Revision returns how many times key has been saved, or 0 if it never was.
func (s *PostgresStateStore) Revision(ctx context.Context, key string) (int64, error) {
	var revision int64
	err := s.db.QueryRowContext(ctx,
		`SELECT revision FROM client_state WHERE key = $1`, key).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, MapError(err)
	}
	return revision, nil
}

func upsertState(ctx context.Context, db store.DBTX, key string, doc []byte) (int64, error) {
	// Row lock serializes concurrent writers of the same key.
	if _, err := db.ExecContext(ctx,
		`SELECT 1 FROM client_state WHERE key = $1 FOR UPDATE`, key); err != nil {
		return 0, fmt.Errorf("lock state row: %w", err)
	}

	var revision int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO client_state (key, document)
		VALUES ($1, $2::json)
		ON CONFLICT (key) DO UPDATE
		SET document = EXCLUDED.document,
		    revision = client_state.revision + 1,
		    updated_at = NOW()
		RETURNING revision`,
		key, string(doc)).Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("upsert state: %w", err)
	}
	return revision, nil
}
