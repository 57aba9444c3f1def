package apkg

import (
	"bytes"
	"context"
	"crypto/sha1" // #nosec G505 -- Anki defines note checksums as SHA-1
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/phrazzld/deckpack/internal/store"
	_ "modernc.org/sqlite" // Register sqlite driver for database/sql
)

const (
	// CollectionFile is the archive entry holding the collection database.
	CollectionFile = "collection.anki2"
	// MediaManifest is the archive entry mapping media indexes to names.
	MediaManifest = "media"

	// basicModelID identifies the front/back note type in every package.
	basicModelID int64 = 1717171717171

	fieldSeparator = "\x1f"
)

// Errors returned while assembling a package.
var (
	ErrInvalidMedia   = errors.New("invalid media")
	ErrDuplicateMedia = errors.New("duplicate media name")
	ErrFinalized      = errors.New("package already finalized")
)

var (
	imgSrcPattern = regexp.MustCompile(`(?i)<img[^>]*?src=["']?([^"'>\s]+)["']?[^>]*>`)
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
)

type mediaItem struct {
	name string
	data []byte
}

type note struct {
	front string
	back  string
}

// Writer accumulates media and notes for one package. It is not safe for
// concurrent use.
type Writer struct {
	deckName  string
	deckID    int64
	now       func() time.Time
	tempDir   string
	media     []mediaItem
	names     map[string]struct{}
	notes     []note
	finalized bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock overrides the time source used for ids and modification times.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

// WithTempDir sets where the collection database is built.
func WithTempDir(dir string) Option {
	return func(w *Writer) {
		w.tempDir = dir
	}
}

// NewWriter creates a writer for a package holding a single deck. The deck
// id derives from the name so repeated exports land in the same deck.
func NewWriter(deckName string, opts ...Option) *Writer {
	w := &Writer{
		deckName: deckName,
		deckID:   DeckID(deckName),
		now:      time.Now,
		names:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DeckID returns the stable deck id used for name.
func DeckID(name string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return 1<<30 + int64(h.Sum32()%(1<<30))
}

// AddMedia registers a media file under name.
func (w *Writer) AddMedia(name string, data []byte) error {
	if w.finalized {
		return ErrFinalized
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: bad name %q", ErrInvalidMedia, name)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: %q is empty", ErrInvalidMedia, name)
	}
	if _, dup := w.names[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateMedia, name)
	}
	w.names[name] = struct{}{}
	w.media = append(w.media, mediaItem{name: name, data: data})
	return nil
}

// AddNote appends a front/back note. Each note yields one card.
func (w *Writer) AddNote(front, back string) error {
	if w.finalized {
		return ErrFinalized
	}
	w.notes = append(w.notes, note{front: front, back: back})
	return nil
}

// Close releases buffered media. It is safe to call more than once.
func (w *Writer) Close() error {
	w.media = nil
	w.notes = nil
	w.names = nil
	return nil
}

// Finalize builds the collection and returns the zipped package.
func (w *Writer) Finalize(ctx context.Context) ([]byte, error) {
	if w.finalized {
		return nil, ErrFinalized
	}
	w.finalized = true

	dir, err := os.MkdirTemp(w.tempDir, "apkg-*")
	if err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	dbPath := filepath.Join(dir, CollectionFile)
	if err := w.writeCollection(ctx, dbPath); err != nil {
		return nil, err
	}

	collection, err := os.ReadFile(dbPath)
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}

	return w.archive(collection)
}

func (w *Writer) writeCollection(ctx context.Context, path string) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close collection: %w", closeErr)
		}
	}()
	db.SetMaxOpenConns(1)

	for _, stmt := range collectionSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create collection schema: %w", err)
		}
	}

	now := w.now()
	mod := now.Unix()
	conf, models, decks, dconf, err := collectionJSON(w.deckID, basicModelID, w.deckName, mod)
	if err != nil {
		return fmt.Errorf("encode collection metadata: %w", err)
	}

	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO col VALUES (1, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, '{}')`,
			mod, now.UnixMilli(), now.UnixMilli(), schemaVersion, conf, models, decks, dconf,
		); err != nil {
			return fmt.Errorf("insert collection row: %w", err)
		}

		base := now.UnixMilli()
		for i, n := range w.notes {
			id := base + int64(i)
			sfld := sortField(n.front)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO notes VALUES (?, ?, ?, ?, -1, '', ?, ?, ?, 0, '')`,
				id, noteGUID(w.deckID, n), basicModelID, mod,
				n.front+fieldSeparator+n.back, sfld, checksum(sfld),
			); err != nil {
				return fmt.Errorf("insert note %d: %w", i, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cards VALUES (?, ?, ?, 0, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
				id, id, w.deckID, mod, i+1,
			); err != nil {
				return fmt.Errorf("insert card %d: %w", i, err)
			}
		}
		return nil
	})
}

func (w *Writer) archive(collection []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	cw, err := zw.Create(CollectionFile)
	if err != nil {
		return nil, fmt.Errorf("add collection: %w", err)
	}
	if _, err := cw.Write(collection); err != nil {
		return nil, fmt.Errorf("write collection: %w", err)
	}

	manifest := make(map[string]string, len(w.media))
	for i, m := range w.media {
		entry := strconv.Itoa(i)
		manifest[entry] = m.name

		// Images are already compressed.
		mw, err := zw.CreateHeader(&zip.FileHeader{Name: entry, Method: zip.Store})
		if err != nil {
			return nil, fmt.Errorf("add media %q: %w", m.name, err)
		}
		if _, err := mw.Write(m.data); err != nil {
			return nil, fmt.Errorf("write media %q: %w", m.name, err)
		}
	}

	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encode media manifest: %w", err)
	}
	mfw, err := zw.Create(MediaManifest)
	if err != nil {
		return nil, fmt.Errorf("add media manifest: %w", err)
	}
	if _, err := mfw.Write(manifestJSON); err != nil {
		return nil, fmt.Errorf("write media manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// sortField is the searchable text of a field: image tags become their
// filenames and other markup is dropped.
func sortField(field string) string {
	s := imgSrcPattern.ReplaceAllString(field, " $1 ")
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}

// checksum is the first 32 bits of the field's SHA-1, used by Anki for
// duplicate detection.
func checksum(sfld string) int64 {
	sum := sha1.Sum([]byte(sfld)) // #nosec G401
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:4]), 16, 64)
	return v
}

func noteGUID(deckID int64, n note) string {
	sum := sha1.Sum([]byte(strconv.FormatInt(deckID, 10) + fieldSeparator + n.front + fieldSeparator + n.back)) // #nosec G401
	return hex.EncodeToString(sum[:8])
}
