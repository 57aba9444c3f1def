package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/deckpack/internal/api/middleware"
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/imagegen"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestRouter mounts handlers under /api the way the server does.
func newTestRouter(register ...func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(discardLogger()))
	r.Route("/api", func(r chi.Router) {
		for _, reg := range register {
			reg(r)
		}
	})
	return r
}

func pngDataURI(t *testing.T, shade uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.SetGray(0, 0, color.Gray{Y: shade})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return imagegen.DataURI(buf.Bytes())
}

func testDeck(t *testing.T, topic string, images ...string) domain.Deck {
	t.Helper()
	d, err := domain.NewDeck(topic)
	require.NoError(t, err)
	for i, img := range images {
		d.Cards = append(d.Cards, domain.NewCard(img, topic+" card "+string(rune('A'+i))))
	}
	return *d
}
