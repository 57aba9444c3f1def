package apkg

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Note is a decoded note: its two fields in order.
type Note struct {
	Front string
	Back  string
}

// Package is the decoded content of an .apkg archive.
type Package struct {
	// Decks maps deck id to name, excluding the built-in default deck.
	Decks map[int64]string
	Notes []Note
	// Cards is the number of rows in the cards table.
	Cards int
	// Media maps filenames to their bytes.
	Media map[string][]byte
}

// Read decodes a package produced by Writer. It is meant for inspection and
// tests, not for importing arbitrary Anki exports.
func Read(ctx context.Context, data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		content, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		entries[f.Name] = content
	}

	collection, ok := entries[CollectionFile]
	if !ok {
		return nil, fmt.Errorf("archive has no %s", CollectionFile)
	}
	manifestJSON, ok := entries[MediaManifest]
	if !ok {
		return nil, fmt.Errorf("archive has no %s manifest", MediaManifest)
	}

	var manifest map[string]string
	if err := json.Unmarshal(manifestJSON, &manifest); err != nil {
		return nil, fmt.Errorf("decode media manifest: %w", err)
	}

	pkg := &Package{Media: make(map[string][]byte, len(manifest))}
	for entry, name := range manifest {
		content, ok := entries[entry]
		if !ok {
			return nil, fmt.Errorf("media %q listed as %q but missing", name, entry)
		}
		pkg.Media[name] = content
	}

	if err := readCollection(ctx, collection, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return content, nil
}

func readCollection(ctx context.Context, collection []byte, pkg *Package) error {
	dir, err := os.MkdirTemp("", "apkg-read-*")
	if err != nil {
		return fmt.Errorf("create work directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, CollectionFile)
	if err := os.WriteFile(path, collection, 0o600); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	defer func() { _ = db.Close() }()

	var decksJSON string
	if err := db.QueryRowContext(ctx, `SELECT decks FROM col WHERE id = 1`).Scan(&decksJSON); err != nil {
		return fmt.Errorf("read collection row: %w", err)
	}
	var decks map[string]deck
	if err := json.Unmarshal([]byte(decksJSON), &decks); err != nil {
		return fmt.Errorf("decode decks: %w", err)
	}
	pkg.Decks = make(map[int64]string, len(decks))
	for _, d := range decks {
		if d.ID != 1 {
			pkg.Decks[d.ID] = d.Name
		}
	}

	rows, err := db.QueryContext(ctx, `SELECT flds FROM notes ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var flds string
		if err := rows.Scan(&flds); err != nil {
			return fmt.Errorf("scan note: %w", err)
		}
		front, back, _ := strings.Cut(flds, fieldSeparator)
		pkg.Notes = append(pkg.Notes, Note{Front: front, Back: back})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate notes: %w", err)
	}

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&pkg.Cards); err != nil {
		return fmt.Errorf("count cards: %w", err)
	}
	return nil
}

// MediaNames extracts the filenames referenced by img tags in a field.
func MediaNames(field string) []string {
	var names []string
	for _, m := range imgSrcPattern.FindAllStringSubmatch(field, -1) {
		names = append(names, m[1])
	}
	return names
}
