// Command deckctl manages decks offline: it edits the same state the server
// uses, generates cards through the configured image provider, and writes
// Anki packages to disk.
package main
