// Package domain contains the core entities of deckpack: decks, the image
// cards they hold and the inert review metadata attached to each card. It is
// independent of any storage, transport or packaging concern.
package domain
