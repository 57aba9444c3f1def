// Package service contains the deck and card use cases.
//
// DeckService validates requests, locates decks by topic (case-insensitive),
// enforces the storage quota, calls the image generator outside the store
// lock, and applies changes through deckstore.Store.Mutate. Every operation
// returns a structured Outcome rather than an error; failures are carried
// in the outcome's Kind and Message.
package service
