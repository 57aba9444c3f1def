package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/deckpack/internal/apkg"
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	payload := base64.StdEncoding.EncodeToString(buf.Bytes())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": payload}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, baseURL string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	stateDir := filepath.Join(dir, "state")
	cfg := fmt.Sprintf(`server:
  log_level: error
state:
  backend: file
  dir: %s
imagegen:
  provider: openai
  base_url: %s
  api_key: test-key
  model: test-model
  mime_type: image/png
export:
  deck_name: CLI Export
`, stateDir, baseURL)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path, dir
}

// run executes one deckctl invocation with a fresh command tree, as a new
// process would.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDeckctl_CategoryAndCardLifecycle(t *testing.T) {
	cfgPath, dir := writeConfig(t, imageServer(t).URL)

	out, err := run(t, "-c", cfgPath, "category", "create", "Birds")
	require.NoError(t, err)
	assert.Contains(t, out, "Birds")

	_, err = run(t, "-c", cfgPath, "category", "create", "birds")
	require.Error(t, err)

	_, err = run(t, "-c", cfgPath, "card", "generate", "Birds", "--details", "owl")
	require.NoError(t, err)
	_, err = run(t, "-c", cfgPath, "card", "themed", "Birds", "cartoon")
	require.NoError(t, err)

	out, err = run(t, "-c", cfgPath, "deck", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Birds")

	out, err = run(t, "-c", cfgPath, "deck", "dump", "Birds")
	require.NoError(t, err)
	var deck domain.Deck
	require.NoError(t, json.Unmarshal([]byte(out), &deck))
	require.Len(t, deck.Cards, 2)
	assert.Equal(t, "New image for Birds: owl", deck.Cards[0].Description)

	_, err = run(t, "-c", cfgPath, "category", "delete", "Birds")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	pkgPath := filepath.Join(dir, "birds.apkg")
	out, err = run(t, "-c", cfgPath, "export", "--out", pkgPath)
	require.NoError(t, err)
	assert.Contains(t, out, pkgPath)

	data, err := os.ReadFile(pkgPath)
	require.NoError(t, err)
	pkg, err := apkg.Read(context.Background(), data)
	require.NoError(t, err)
	assert.Len(t, pkg.Notes, 2)
	assert.Len(t, pkg.Media, 2)
	assert.Contains(t, pkg.Decks, apkg.DeckID("CLI Export"))

	out, err = run(t, "inspect", pkgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "CLI Export")
	assert.Contains(t, out, "Notes: 2")

	_, err = run(t, "-c", cfgPath, "category", "delete", "Birds", "--yes")
	require.NoError(t, err)

	out, err = run(t, "-c", cfgPath, "deck", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No decks")
}

func TestDeckctl_ExportFromInput(t *testing.T) {
	cfgPath, dir := writeConfig(t, imageServer(t).URL)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	input := fmt.Sprintf(`[
  {"id":"1","topic":"Ocean Life","cards":[{"image":%q,"description":"whale"},{"image":"","description":"skipped"}]}
]`, uri)
	inputPath := filepath.Join(dir, "decks.json")
	require.NoError(t, os.WriteFile(inputPath, []byte(input), 0o600))

	pkgPath := filepath.Join(dir, "ocean.apkg")
	_, err := run(t, "-c", cfgPath, "export", "--input", inputPath, "--out", pkgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(pkgPath)
	require.NoError(t, err)
	pkg, err := apkg.Read(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, pkg.Notes, 1)
	assert.Equal(t, "whale", pkg.Notes[0].Back)
	assert.Contains(t, pkg.Media, "Ocean_Life_0.png")
}

func TestDeckctl_ExportWithoutImages(t *testing.T) {
	cfgPath, dir := writeConfig(t, imageServer(t).URL)

	_, err := run(t, "-c", cfgPath, "category", "create", "Empty")
	require.NoError(t, err)

	_, err = run(t, "-c", cfgPath, "export", "--out", filepath.Join(dir, "empty.apkg"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "empty.apkg"))
}

func TestDeckctl_CardErrors(t *testing.T) {
	cfgPath, _ := writeConfig(t, imageServer(t).URL)

	_, err := run(t, "-c", cfgPath, "card", "generate", "Missing")
	require.Error(t, err)

	_, err = run(t, "-c", cfgPath, "category", "create", "Cats")
	require.NoError(t, err)

	_, err = run(t, "-c", cfgPath, "card", "delete", "Cats", "x")
	require.Error(t, err)

	_, err = run(t, "-c", cfgPath, "card", "delete", "Cats", "0")
	require.Error(t, err)
}

func TestDeckctl_BadConfig(t *testing.T) {
	_, err := run(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "deck", "list")
	require.Error(t, err)
}
