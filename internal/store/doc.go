// Package store defines the persistence boundary for client state. The deck
// store is saved as a single JSON document under a fixed key; implementations
// of StateStore decide where that document lives (a local file or a
// PostgreSQL table) without interpreting its contents.
package store
