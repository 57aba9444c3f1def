// Package export flattens decks into an Anki study package: every card with
// an image becomes one media file plus one note whose front shows it.
package export

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/phrazzld/deckpack/internal/apkg"
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/imagegen"
)

const (
	// DefaultDeckName names the deck inside exported packages.
	DefaultDeckName = "ImageExport"

	// defaultExtension is used when the image type cannot be identified.
	defaultExtension = "jpg"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// PackageWriter assembles one package.
type PackageWriter interface {
	AddMedia(name string, data []byte) error
	AddNote(front, back string) error
	Finalize(ctx context.Context) ([]byte, error)
	Close() error
}

// WriterFactory creates a fresh PackageWriter for each export.
type WriterFactory func(deckName string) PackageWriter

// Unit is one card scheduled for export along with its deck topic and,
// once named, its media filename.
type Unit struct {
	Card      domain.Card
	Topic     string
	MediaName string
}

// Pipeline exports deck collections. Calls are independent and may run
// concurrently.
type Pipeline struct {
	newWriter WriterFactory
	deckName  string
	logger    *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRand sets the shuffle source.
func WithRand(r *rand.Rand) Option {
	return func(p *Pipeline) {
		p.rng = r
	}
}

// WithDeckName names the deck inside the package.
func WithDeckName(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.deckName = name
		}
	}
}

// WithWriterFactory replaces the package writer.
func WithWriterFactory(f WriterFactory) Option {
	return func(p *Pipeline) {
		p.newWriter = f
	}
}

// NewPipeline creates a pipeline writing Anki packages.
func NewPipeline(logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	seed := uint64(time.Now().UnixNano())
	p := &Pipeline{
		newWriter: func(deckName string) PackageWriter { return apkg.NewWriter(deckName) },
		deckName:  DefaultDeckName,
		logger:    logger.With(slog.String("component", "export_pipeline")),
		rng:       rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Flatten returns every card that has an image, tagged with its deck topic,
// in deck then card order.
func Flatten(decks []domain.Deck) []Unit {
	var units []Unit
	for _, d := range decks {
		for _, c := range d.Cards {
			if c.HasImage() {
				units = append(units, Unit{Card: c, Topic: d.Topic})
			}
		}
	}
	return units
}

// MediaName builds the package filename for the index-th unit.
func MediaName(topic string, index int, ext string) string {
	base := whitespaceRun.ReplaceAllString(topic, "_")
	// Media live in a flat directory.
	base = strings.NewReplacer("/", "-", `\`, "-").Replace(base)
	return base + "_" + strconv.Itoa(index) + "." + ext
}

// Extension returns the file extension for image bytes, without the dot.
func Extension(data []byte) string {
	ext := strings.TrimPrefix(mimetype.Detect(data).Extension(), ".")
	if ext == "" {
		return defaultExtension
	}
	return ext
}

// Export builds a package from decks.
func (p *Pipeline) Export(ctx context.Context, decks []domain.Deck) ([]byte, error) {
	if len(decks) == 0 {
		return nil, ErrEmptyInput
	}

	units := Flatten(decks)
	if len(units) == 0 {
		return nil, ErrNoEligibleCards
	}

	p.shuffle(units)

	w := p.newWriter(p.deckName)
	defer func() {
		if err := w.Close(); err != nil {
			p.logger.WarnContext(ctx, "failed to release package writer", "error", err)
		}
	}()

	var mediaBytes int
	for i := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		u := &units[i]
		data, err := imagegen.ParseDataURI(u.Card.Image)
		if err != nil {
			return nil, &PackagingError{Stage: "decode", Err: fmt.Errorf("card %d of %q: %w", i, u.Topic, err)}
		}

		u.MediaName = MediaName(u.Topic, i, Extension(data))
		if err := w.AddMedia(u.MediaName, data); err != nil {
			return nil, &PackagingError{Stage: "media", Media: u.MediaName, Err: err}
		}
		front := `<img src="` + html.EscapeString(u.MediaName) + `">`
		if err := w.AddNote(front, u.Card.Description); err != nil {
			return nil, &PackagingError{Stage: "note", Media: u.MediaName, Err: err}
		}
		mediaBytes += len(data)
	}

	out, err := w.Finalize(ctx)
	if err != nil {
		return nil, &PackagingError{Stage: "finalize", Err: err}
	}

	p.logger.InfoContext(ctx, "package exported",
		"decks", len(decks),
		"cards", len(units),
		"media_bytes", mediaBytes,
		"package_bytes", len(out))
	return out, nil
}

func (p *Pipeline) shuffle(units []Unit) {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	p.rng.Shuffle(len(units), func(i, j int) {
		units[i], units[j] = units[j], units[i]
	})
}
