package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/deckpack/internal/apkg"
	"github.com/phrazzld/deckpack/internal/api/shared"
	"github.com/phrazzld/deckpack/internal/deckstore"
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/phrazzld/deckpack/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockExporter struct {
	exportFn func(ctx context.Context, decks []domain.Deck) ([]byte, error)
	calls    int
}

func (m *mockExporter) Export(ctx context.Context, decks []domain.Deck) ([]byte, error) {
	m.calls++
	return m.exportFn(ctx, decks)
}

func postExport(t *testing.T, h *ExportHandler, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := newTestRouter(h.Register)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestExportPackage_EndToEnd(t *testing.T) {
	pipeline := export.NewPipeline(discardLogger(), export.WithRand(rand.New(rand.NewPCG(1, 2))))
	h := NewExportHandler(pipeline, nil, 0, discardLogger())

	decks := []domain.Deck{
		testDeck(t, "Sea Animals", pngDataURI(t, 10), pngDataURI(t, 20)),
		testDeck(t, "Birds", pngDataURI(t, 30), ""),
	}
	body, err := json.Marshal(decks)
	require.NoError(t, err)

	for _, path := range []string{"/api/export-package", "/api/export-apkg"} {
		t.Run(path, func(t *testing.T) {
			w := postExport(t, h, path, string(body))

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, PackageContentType, w.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="export.apkg"`, w.Header().Get("Content-Disposition"))

			pkg, err := apkg.Read(context.Background(), w.Body.Bytes())
			require.NoError(t, err)
			assert.Len(t, pkg.Notes, 3)
			assert.Len(t, pkg.Media, 3)
			for _, n := range pkg.Notes {
				names := apkg.MediaNames(n.Front)
				require.Len(t, names, 1)
				assert.Contains(t, pkg.Media, names[0])
			}
			assert.Contains(t, pkg.Decks, apkg.DeckID(export.DefaultDeckName))
		})
	}
}

func TestExportPackage_BadRequests(t *testing.T) {
	exporter := &mockExporter{exportFn: export.NewPipeline(discardLogger()).Export}
	h := NewExportHandler(exporter, nil, 0, discardLogger())

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "object instead of array", body: `{"topic":"Birds"}`, message: "Request body must be a JSON array of decks"},
		{name: "malformed", body: `[{"topic":`, message: "Request body must be a JSON array of decks"},
		{name: "empty body", body: ``, message: "Request body must be a JSON array of decks"},
		{name: "empty array", body: `[]`, message: "Request body must be a non-empty array of decks"},
		{name: "null", body: `null`, message: "Request body must be a non-empty array of decks"},
		{name: "no images", body: `[{"id":"1","topic":"Birds","cards":[{"image":"","description":"x"}]}]`,
			message: "No cards with images to export"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postExport(t, h, "/api/export-package", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tc.message, resp.Error)
			assert.NotEmpty(t, resp.TraceID)
		})
	}
}

func TestExportPackage_BodyLimit(t *testing.T) {
	exporter := &mockExporter{exportFn: func(context.Context, []domain.Deck) ([]byte, error) {
		return []byte("pkg"), nil
	}}
	h := NewExportHandler(exporter, nil, 64, discardLogger())

	body, err := json.Marshal([]domain.Deck{testDeck(t, "Birds", pngDataURI(t, 1))})
	require.NoError(t, err)
	w := postExport(t, h, "/api/export-package", string(body))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body exceeds 64 bytes", decodeError(t, w).Error)
	assert.Equal(t, 0, exporter.calls)
}

func TestExportPackage_PackagingFailure(t *testing.T) {
	exporter := &mockExporter{exportFn: func(context.Context, []domain.Deck) ([]byte, error) {
		return nil, &export.PackagingError{
			Stage: "media",
			Media: "Birds_0.png",
			Err:   errors.New("duplicate media name"),
		}
	}}
	h := NewExportHandler(exporter, nil, 0, discardLogger())

	w := postExport(t, h, "/api/export-package", `[{"id":"1","topic":"Birds","cards":[]}]`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to build package: packaging failed at media (Birds_0.png): duplicate media name",
		decodeError(t, w).Error)
}

func TestExportStored(t *testing.T) {
	store := deckstore.NewWithDecks([]domain.Deck{testDeck(t, "Birds", pngDataURI(t, 5))})
	pipeline := export.NewPipeline(discardLogger())
	h := NewExportHandler(pipeline, storeLister{store}, 0, discardLogger())
	router := newTestRouter(h.Register)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/export-package", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

type storeLister struct{ s *deckstore.Store }

func (l storeLister) Decks() []domain.Deck { return l.s.Snapshot() }
