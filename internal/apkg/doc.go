// Package apkg writes Anki study packages.
//
// A package is a zip archive holding a collection database
// (collection.anki2, SQLite schema 11), one file per media item named by its
// position ("0", "1", ...), and a "media" JSON object mapping those
// positions back to the filenames notes reference.
package apkg
