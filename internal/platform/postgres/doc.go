// Package postgres provides a PostgreSQL implementation of store.StateStore.
// It owns connection setup (pgx through database/sql), the embedded goose
// migrations for the client_state table, and the mapping of driver errors to
// store errors.
package postgres
